package stats

// ResponseClass is a classifier's verdict on one completed call.
type ResponseClass int

const (
	Successful ResponseClass = iota
	Failed
)

// Classifier maps a completed call — its original arguments plus the
// outcome — to a success/failure verdict. It is a pure policy hook: a
// declared exception the caller considers routine ("not found") may be
// classified Successful, and a returned value may be classified Failed.
// Classifiers must be total; a panicking classifier is a defect and falls
// back to the default verdict.
type Classifier func(args any, result any, err error) ResponseClass

// DefaultClassifier treats any error — transport, protocol, or declared
// exception — as Failed and every returned value as Successful.
func DefaultClassifier(args any, result any, err error) ResponseClass {
	if err != nil {
		return Failed
	}
	return Successful
}

func classify(c Classifier, args any, result any, err error) (rc ResponseClass) {
	if c == nil {
		return DefaultClassifier(args, result, err)
	}
	defer func() {
		if recover() != nil {
			rc = DefaultClassifier(args, result, err)
		}
	}()
	return c(args, result, err)
}
