package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

// wsPair starts a server that hands its side of each connection to handle
// and returns the dialed client side.
func wsPair(t *testing.T, handle func(*WSConn)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		handle(NewWSConn(ws))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWSConnEcho(t *testing.T) {
	m := newTestMetrics(t)
	client := wsPair(t, func(c *WSConn) {
		defer c.Close()
		c.SetCompression(16)
		ctx := context.Background()
		for {
			b, err := c.ReadPacket(ctx)
			if err != nil {
				return
			}
			if err := c.WritePacket(ctx, b); err != nil {
				return
			}
		}
	})

	cc := NewWSConn(client, WithMetrics(m), WithThreshold(16))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payloads := [][]byte{[]byte("ping"), bytes.Repeat([]byte("pong "), 20)}
	for _, p := range payloads {
		if err := cc.WritePacket(ctx, protocol.NewBuffer(p)); err != nil {
			t.Fatalf("WritePacket() error = %v", err)
		}
		f, err := cc.ReadFrame(ctx)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if !bytes.Equal(f.Payload, p) {
			t.Errorf("echo = %q, want %q", f.Payload, p)
		}
		if f.Compressed() != (len(p) >= 16) {
			t.Errorf("Compressed() = %v for %d bytes", f.Compressed(), len(p))
		}
	}

	if got := testutil.ToFloat64(m.framesTotal.WithLabelValues(DirectionRead, "true")); got != 1 {
		t.Errorf("frames_total{read,true} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.framesTotal.WithLabelValues(DirectionWrite, "false")); got != 1 {
		t.Errorf("frames_total{write,false} = %v, want 1", got)
	}
}

func TestWSConnRejectsBadMessages(t *testing.T) {
	one, _ := protocol.NewBuffer([]byte("a")).ToBytes(-1)
	two := append(append([]byte(nil), one...), one...)

	tests := []struct {
		name    string
		mt      int
		data    []byte
		wantErr error
	}{
		{"text", websocket.TextMessage, []byte("hello"), ErrTextMessage},
		{"two frames", websocket.BinaryMessage, two, ErrTrailingData},
		{"truncated", websocket.BinaryMessage, []byte{0x05, 0x01}, protocol.ErrOutOfData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := make(chan error, 1)
			client := wsPair(t, func(c *WSConn) {
				defer c.Close()
				_, err := c.ReadPacket(context.Background())
				got <- err
			})
			if err := client.WriteMessage(tc.mt, tc.data); err != nil {
				t.Fatal(err)
			}
			select {
			case err := <-got:
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("ReadPacket() error = %v, want %v", err, tc.wantErr)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("server did not read")
			}
		})
	}
}

func TestWSConnNormalCloseIsEOF(t *testing.T) {
	got := make(chan error, 1)
	client := wsPair(t, func(c *WSConn) {
		_, err := c.ReadPacket(context.Background())
		got <- err
	})

	cc := NewWSConn(client)
	if err := cc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Close is idempotent.
	if err := cc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	select {
	case err := <-got:
		if err != io.EOF {
			t.Errorf("ReadPacket() after peer close error = %v, want io.EOF", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not observe the close")
	}
}

func TestWSConnReadDeadline(t *testing.T) {
	client := wsPair(t, func(c *WSConn) {
		time.Sleep(200 * time.Millisecond)
	})
	cc := NewWSConn(client)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := cc.ReadPacket(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ReadPacket() error = %v, want context.DeadlineExceeded", err)
	}
}
