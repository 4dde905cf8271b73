package transport

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

// frameStats describes one frame for spans, metrics and logs.
type frameStats struct {
	// wire is the framed size, length prefix included.
	wire       int
	payload    int
	compressed bool
}

func statsOf(f *protocol.Frame) frameStats {
	return frameStats{
		wire:       protocol.UvarintLen(uint64(f.Length)) + f.Length,
		payload:    len(f.Payload),
		compressed: f.Compressed(),
	}
}

// compresses mirrors the rule ToBytes applies to a payload of n bytes.
func compresses(n, threshold int) bool {
	return threshold >= 0 && n > 0 && n >= threshold
}

func (in *instruments) startSpan(ctx context.Context, direction string, threshold int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("mcwire.direction", direction),
		attribute.Int("mcwire.threshold", threshold),
	}
	if in.peer != "" {
		attrs = append(attrs, attribute.String("net.peer.address", in.peer))
	}
	return in.tracer.Start(ctx, "mcwire."+direction+"_frame",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (in *instruments) succeeded(span trace.Span, direction string, st frameStats) {
	span.SetAttributes(
		attribute.Int("mcwire.frame.bytes", st.wire),
		attribute.Int("mcwire.payload.bytes", st.payload),
		attribute.Bool("mcwire.frame.compressed", st.compressed),
	)
	in.metrics.observeFrame(direction, st.wire, st.compressed)
	in.logger.Debug("frame",
		"direction", direction,
		"bytes", st.wire,
		"payload", st.payload,
		"compressed", st.compressed)
}

// failed records err on the span. A clean end of stream on read is not a
// failure and is only logged at debug level.
func (in *instruments) failed(span trace.Span, direction string, err error) {
	if direction == DirectionRead && errors.Is(err, io.EOF) {
		in.logger.Debug("stream closed")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	kind := ErrorKind(err)
	span.SetAttributes(attribute.String("mcwire.error.kind", kind))
	if direction == DirectionRead {
		in.metrics.observeError(err)
		in.logger.Warn("frame read failed", "kind", kind, "error", err)
		return
	}
	in.logger.Error("frame write failed", "kind", kind, "error", err)
}
