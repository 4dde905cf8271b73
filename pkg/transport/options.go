package transport

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for frame spans.
const defaultTracerName = "mcwire/transport"

// Option configures a Conn or WSConn.
type Option func(*instruments)

// WithLogger sets the logger. Default: slog.Default() with component=transport.
func WithLogger(logger *slog.Logger) Option {
	return func(in *instruments) {
		if logger != nil {
			in.logger = logger.With("component", "transport")
		}
	}
}

// WithMetrics records frame metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(in *instruments) {
		in.metrics = m
	}
}

// WithTracerProvider sets the provider frame spans come from.
// Default: the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(in *instruments) {
		if tp != nil {
			in.tracer = tp.Tracer(defaultTracerName)
		}
	}
}

// WithThreshold sets the initial compression threshold. Negative disables
// compression.
func WithThreshold(threshold int) Option {
	return func(in *instruments) {
		in.threshold = threshold
	}
}

// WithPeer labels log lines and spans with the remote address.
func WithPeer(addr string) Option {
	return func(in *instruments) {
		in.peer = addr
	}
}

// instruments is the state shared by both connection types.
type instruments struct {
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	threshold int
	peer      string
}

func newInstruments(opts []Option) instruments {
	in := instruments{
		logger:    slog.Default().With("component", "transport"),
		tracer:    otel.Tracer(defaultTracerName),
		threshold: -1,
	}
	for _, opt := range opts {
		opt(&in)
	}
	if in.peer != "" {
		in.logger = in.logger.With("peer", in.peer)
	}
	return in
}
