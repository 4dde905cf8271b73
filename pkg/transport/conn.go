package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

var (
	// ErrTextMessage is returned when a WebSocket peer sends a text message.
	ErrTextMessage = errors.New("transport: text message received, frames must be binary")

	// ErrTrailingData is returned when a WebSocket message holds more than
	// one frame.
	ErrTrailingData = errors.New("transport: message has bytes after the frame")
)

// PacketConn is a connection carrying whole packets.
type PacketConn interface {
	ReadPacket(ctx context.Context) (*protocol.Buffer, error)
	WritePacket(ctx context.Context, b *protocol.Buffer) error
	SetCompression(threshold int)
	Close() error
}

var (
	_ PacketConn = (*Conn)(nil)
	_ PacketConn = (*WSConn)(nil)
)

// readDeadliner and writeDeadliner are implemented by net.Conn.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Conn reads and writes frames on a byte stream.
//
// After a read error the stream position is undefined and the Conn should
// be closed.
type Conn struct {
	rw io.ReadWriter
	r  *bufio.Reader
	in instruments

	threshold atomic.Int64

	// wmu serializes writers so frames never interleave.
	wmu sync.Mutex
}

// NewConn wraps rw. Reads are buffered; writes go straight to rw, one call
// per frame.
func NewConn(rw io.ReadWriter, opts ...Option) *Conn {
	c := &Conn{
		rw: rw,
		r:  bufio.NewReader(rw),
		in: newInstruments(opts),
	}
	c.threshold.Store(int64(c.in.threshold))
	return c
}

// SetCompression sets the compression threshold for both directions.
// Negative disables compression.
func (c *Conn) SetCompression(threshold int) {
	c.threshold.Store(int64(threshold))
	c.in.logger.Debug("compression set", "threshold", threshold)
}

// Threshold returns the current compression threshold.
func (c *Conn) Threshold() int {
	return int(c.threshold.Load())
}

// ReadFrame reads the next frame. It returns io.EOF when the stream ends
// cleanly between frames. Cancelling ctx interrupts the read when the
// underlying stream supports read deadlines.
func (c *Conn) ReadFrame(ctx context.Context) (*protocol.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	threshold := c.Threshold()
	ctx, span := c.in.startSpan(ctx, DirectionRead, threshold)
	defer span.End()

	var stop func()
	if d, ok := c.rw.(readDeadliner); ok {
		stop = bindDeadline(ctx, d.SetReadDeadline)
	}
	f, err := protocol.ReadFrame(c.r, threshold)
	if stop != nil {
		stop()
	}
	if err != nil {
		err = contextCause(ctx, err)
		c.in.failed(span, DirectionRead, err)
		return nil, err
	}
	c.in.succeeded(span, DirectionRead, statsOf(f))
	return f, nil
}

// ReadPacket reads the next frame and returns a Buffer over its payload.
func (c *Conn) ReadPacket(ctx context.Context) (*protocol.Buffer, error) {
	f, err := c.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return f.Buffer(), nil
}

// WritePacket frames the whole content of b and writes it. Safe for
// concurrent use.
func (c *Conn) WritePacket(ctx context.Context, b *protocol.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	threshold := c.Threshold()
	ctx, span := c.in.startSpan(ctx, DirectionWrite, threshold)
	defer span.End()

	data, err := b.ToBytes(threshold)
	if err != nil {
		c.in.failed(span, DirectionWrite, err)
		return err
	}

	c.wmu.Lock()
	var stop func()
	if d, ok := c.rw.(writeDeadliner); ok {
		stop = bindDeadline(ctx, d.SetWriteDeadline)
	}
	_, err = c.rw.Write(data)
	if stop != nil {
		stop()
	}
	c.wmu.Unlock()

	if err != nil {
		err = contextCause(ctx, err)
		c.in.failed(span, DirectionWrite, err)
		return err
	}
	c.in.succeeded(span, DirectionWrite, frameStats{
		wire:       len(data),
		payload:    b.Len(),
		compressed: compresses(b.Len(), threshold),
	})
	return nil
}

// Close closes the underlying stream when it is an io.Closer.
func (c *Conn) Close() error {
	if cl, ok := c.rw.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// bindDeadline applies the context deadline through set and forces an
// immediate deadline when ctx is cancelled. The returned func clears both.
func bindDeadline(ctx context.Context, set func(time.Time) error) func() {
	if dl, ok := ctx.Deadline(); ok {
		_ = set(dl)
	}
	cancel := context.AfterFunc(ctx, func() {
		_ = set(time.Now())
	})
	return func() {
		cancel()
		_ = set(time.Time{})
	}
}

// contextCause reports the context error instead of the deadline error it
// provoked. The stream deadline can fire just before the context notices
// its own, so an expired deadline counts too.
func contextCause(ctx context.Context, err error) error {
	if !isTimeout(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return err
}
