// Package transport moves whole protocol frames over byte streams and
// WebSocket connections.
//
// Conn wraps any io.ReadWriter (typically a net.Conn) and WSConn wraps a
// gorilla *websocket.Conn, where one binary message carries one frame.
// Both track the negotiated compression threshold, which starts disabled
// (-1) and is switched on with SetCompression once the peer has sent its
// Set Compression packet:
//
//	c := transport.NewConn(nc, transport.WithLogger(logger))
//	pkt, err := c.ReadPacket(ctx)
//	...
//	c.SetCompression(256)
//	err = c.WritePacket(ctx, reply)
//
// Reads are owned by a single goroutine. Writes are serialized internally
// and may come from any goroutine.
//
// # Observability
//
// Every frame is counted and sized in Prometheus metrics when WithMetrics is
// given, traced with an OpenTelemetry span, and decode failures are logged
// at warn level with their error kind.
package transport
