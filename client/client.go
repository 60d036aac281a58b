// Package client composes the typed call pipeline for a remote service:
// per-method request encoding, transport invocation, response decoding,
// and classified statistics.
//
// A Client carries the collaborators shared by every method of one remote
// service (transport, protocol factory, stats sink, encode buffer pool);
// Build instantiates the typed operation for a single method descriptor.
package client

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mustang2247/finagle/bufpool"
	"github.com/mustang2247/finagle/codec"
	"github.com/mustang2247/finagle/middleware"
	"github.com/mustang2247/finagle/protocol"
	"github.com/mustang2247/finagle/stats"
	"github.com/mustang2247/finagle/transport"
)

// Config bundles the client's tunables. It is fixed at construction and
// shared by reference across all calls.
type Config struct {
	// Protocol selects the wire encoding. Default: binary.
	Protocol protocol.Factory

	// Stats receives per-method counters. Default: discard.
	Stats stats.Receiver

	// Classifier decides which outcomes count as failures.
	// Default: any error is a failure.
	Classifier stats.Classifier

	// MaxReusableBufferSize caps the capacity an encode buffer retains
	// across calls. Default: bufpool.DefaultMaxRetained.
	MaxReusableBufferSize int

	Logger *zap.Logger
}

// Option customizes a Config.
type Option func(*Config)

func WithProtocol(f protocol.Factory) Option { return func(c *Config) { c.Protocol = f } }

func WithStats(r stats.Receiver) Option { return func(c *Config) { c.Stats = r } }

func WithClassifier(cl stats.Classifier) Option { return func(c *Config) { c.Classifier = cl } }

func WithMaxReusableBufferSize(n int) Option {
	return func(c *Config) { c.MaxReusableBufferSize = n }
}

func WithLogger(l *zap.Logger) Option { return func(c *Config) { c.Logger = l } }

// Client holds the shared call-path collaborators for one remote service.
type Client struct {
	tr   transport.Transport
	cfg  Config
	pool *bufpool.Pool
}

func New(tr transport.Transport, opts ...Option) *Client {
	cfg := Config{
		Protocol:              protocol.NewBinaryFactory(),
		Stats:                 stats.NewNil(),
		Classifier:            stats.DefaultClassifier,
		MaxReusableBufferSize: bufpool.DefaultMaxRetained,
		Logger:                zap.NewNop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	cfg.Logger = cfg.Logger.Named("client")
	cfg.Logger.Debug("client configured",
		zap.String("max-reusable-buffer", humanize.IBytes(uint64(cfg.MaxReusableBufferSize))))
	return &Client{
		tr:   tr,
		cfg:  cfg,
		pool: bufpool.New(cfg.MaxReusableBufferSize),
	}
}

// Close releases the client's transport and flushes its logger.
func (c *Client) Close() error {
	return multierr.Append(c.tr.Close(), c.cfg.Logger.Sync())
}

// Build composes the typed operation for one method:
//
//	stats filter ──→ codec service ──→ transport
//
// The order is fixed. Stats must observe the final typed outcome —
// including decode and protocol failures — so the stats filter wraps the
// codec service rather than sitting beside it.
func Build[A, R any](c *Client, m *codec.Method[A, R]) middleware.Service[A, R] {
	sf := stats.Filter[A, R](c.cfg.Stats, m.Service, m.Name, c.cfg.Classifier)
	return sf(codecService(c, m))
}

// codecService is the innermost typed layer: encode args, bind this call's
// deserialize context, make the single transport invocation, decode.
func codecService[A, R any](c *Client, m *codec.Method[A, R]) middleware.Service[A, R] {
	return func(ctx context.Context, args A) (R, error) {
		var zero R

		request, err := codec.EncodeRequest(c.pool, c.cfg.Protocol, m.Name, args, m.Args)
		if err != nil {
			return zero, err
		}

		// The decode operation travels with the call: layers that only
		// see bytes (the transport, byte-level tracing) can resolve this
		// call's typed result through the context binding. The codec
		// service itself resolves through the same closure.
		decode := func(response []byte) (any, error) {
			return codec.DecodeResponse(c.cfg.Protocol, m.Name, m.Service, m.Result, response)
		}
		ctx = codec.WithDeserializeCtx(ctx, &codec.DeserializeCtx{Args: args, Decode: decode})

		response, err := c.tr.Invoke(ctx, request, m.Oneway)
		if err != nil {
			// Transport failures (including cancellation and timeouts)
			// surface unchanged; there is nothing to decode.
			return zero, err
		}
		if m.Oneway {
			return zero, nil
		}

		out, err := decode(response)
		if err != nil {
			return zero, err
		}
		v, _ := out.(R)
		return v, nil
	}
}

// ResultFilter adapts a service yielding the raw result union into one
// yielding only the success value, raising the declared exception (tagged
// with the owning service) or a MissingResultError otherwise. It bridges
// call paths that already hold a decoded Result — say, a same-process
// service speaking the typed representation — onto the plain typed
// surface without going through bytes.
func ResultFilter[A, R any](method, service string, inner middleware.Service[A, codec.Result[R]]) middleware.Service[A, R] {
	return func(ctx context.Context, args A) (R, error) {
		res, err := inner(ctx, args)
		if err != nil {
			var zero R
			return zero, err
		}
		return codec.Resolve(res, method, service)
	}
}
