package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

// closeGrace bounds the close handshake in Close.
const closeGrace = time.Second

// WSConn carries frames over a WebSocket, one binary message per frame.
type WSConn struct {
	ws *websocket.Conn
	in instruments

	threshold atomic.Int64
	wmu       sync.Mutex
	closeOnce sync.Once
}

// NewWSConn wraps an established WebSocket. The read limit is set to the
// largest valid frame.
func NewWSConn(ws *websocket.Conn, opts ...Option) *WSConn {
	if addr := ws.RemoteAddr(); addr != nil {
		opts = append([]Option{WithPeer(addr.String())}, opts...)
	}
	c := &WSConn{
		ws: ws,
		in: newInstruments(opts),
	}
	c.threshold.Store(int64(c.in.threshold))
	ws.SetReadLimit(protocol.MaxFrameLength + protocol.MaxVarintLen)
	return c
}

// SetCompression sets the compression threshold for both directions.
func (c *WSConn) SetCompression(threshold int) {
	c.threshold.Store(int64(threshold))
	c.in.logger.Debug("compression set", "threshold", threshold)
}

// Threshold returns the current compression threshold.
func (c *WSConn) Threshold() int {
	return int(c.threshold.Load())
}

// ReadFrame reads one message and decodes it as a frame. A normal close
// from the peer is reported as io.EOF.
func (c *WSConn) ReadFrame(ctx context.Context) (*protocol.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	threshold := c.Threshold()
	ctx, span := c.in.startSpan(ctx, DirectionRead, threshold)
	defer span.End()

	stop := bindDeadline(ctx, c.ws.SetReadDeadline)
	mt, data, err := c.ws.ReadMessage()
	stop()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			err = io.EOF
		}
		err = contextCause(ctx, err)
		c.in.failed(span, DirectionRead, err)
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		c.in.failed(span, DirectionRead, ErrTextMessage)
		return nil, ErrTextMessage
	}

	f, rest, err := protocol.DecodeFrame(data, threshold)
	if err == nil && len(rest) > 0 {
		err = fmt.Errorf("%w: %d bytes", ErrTrailingData, len(rest))
	}
	if err != nil {
		c.in.failed(span, DirectionRead, err)
		return nil, err
	}
	c.in.succeeded(span, DirectionRead, statsOf(f))
	return f, nil
}

// ReadPacket reads one frame and returns a Buffer over its payload.
func (c *WSConn) ReadPacket(ctx context.Context) (*protocol.Buffer, error) {
	f, err := c.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return f.Buffer(), nil
}

// WritePacket frames b and sends it as one binary message. Safe for
// concurrent use.
func (c *WSConn) WritePacket(ctx context.Context, b *protocol.Buffer) error {
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
	stop := bindDeadline(ctx, c.ws.SetWriteDeadline)
	err = c.ws.WriteMessage(websocket.BinaryMessage, data)
	stop()
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

// Close sends a normal close message and closes the connection.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace),
		)
		c.wmu.Unlock()
		err = c.ws.Close()
	})
	return err
}
