package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

// Frame directions used as metric labels and span names.
const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

// MetricsConfig configures the frame metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mcwire").
	Namespace string

	// Subsystem is the metrics subsystem (default: "transport").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for frame sizes in bytes.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the frame metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the frame size histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "mcwire",
		Subsystem: "transport",
		// 16 B to 2 MiB, the largest frame accepted.
		Buckets:  prometheus.ExponentialBuckets(16, 4, 9),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for frame traffic. A nil *Metrics
// records nothing.
type Metrics struct {
	framesTotal  *prometheus.CounterVec
	frameBytes   *prometheus.HistogramVec
	decodeErrors *prometheus.CounterVec
}

// NewMetrics registers the frame metrics:
//   - mcwire_transport_frames_total: frames by direction and compressed flag
//   - mcwire_transport_frame_bytes: framed size by direction
//   - mcwire_transport_decode_errors_total: failed reads by error kind
//
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total number of frames by direction and compression",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "compressed"}),

		frameBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_bytes",
			Help:        "Framed size in bytes, length prefix included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),

		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_errors_total",
			Help:        "Total frames that failed to read or decode, by error kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeFrame(direction string, size int, compressed bool) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(direction, strconv.FormatBool(compressed)).Inc()
	m.frameBytes.WithLabelValues(direction).Observe(float64(size))
}

func (m *Metrics) observeError(err error) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind returns a low-cardinality category for err, suitable for
// metric labels and log fields.
func ErrorKind(err error) string {
	var closeErr *websocket.CloseError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, protocol.ErrRange):
		return "range"
	case errors.Is(err, protocol.ErrOutOfData):
		return "out_of_data"
	case errors.Is(err, protocol.ErrDecode):
		return "decode"
	case errors.Is(err, ErrTextMessage), errors.Is(err, ErrTrailingData):
		return "message"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed),
		errors.As(err, &closeErr):
		return "closed"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return "timeout"
	default:
		return "io"
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
