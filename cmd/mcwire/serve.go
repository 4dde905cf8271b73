package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pymine-dev/mcwire/internal/errors"
	"github.com/pymine-dev/mcwire/pkg/middleware"
	"github.com/pymine-dev/mcwire/pkg/protocol"
	"github.com/pymine-dev/mcwire/pkg/transport"
)

// maxBodyBytes bounds request bodies: a hex encoded frame of the largest
// legal size plus some whitespace.
const maxBodyBytes = 3 * (protocol.MaxFrameLength + protocol.MaxVarintLen)

func serveCmd(c *cli) *cobra.Command {
	var (
		addr      string
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the debug HTTP server",
		Long: `Run an HTTP server for decoding frames remotely.

Endpoints:
  GET  /healthz            liveness probe
  GET  /metrics            Prometheus metrics
  POST /v1/frames/decode   decode one frame (hex or application/octet-stream body)
  POST /v1/frames/encode   frame a payload (hex or application/octet-stream body)
  GET  /v1/ws              WebSocket: every binary message is decoded as a
                           frame and echoed back re-encoded

The threshold query parameter overrides the compression threshold per
request. Defaults come from mcwire.json (server.addr, codec.threshold).

Examples:
  mcwire serve
  mcwire serve --addr 0.0.0.0:8025 --threshold 256`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("threshold") {
				c.cfg.SetThreshold(threshold)
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, c)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from mcwire.json)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", -1, "Compression threshold (default from mcwire.json)")

	return cmd
}

func runServer(ctx context.Context, c *cli) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s := newServer(serverOptions{
		logger:         c.logger,
		registry:       reg,
		namespace:      c.cfg.Metrics.Namespace,
		threshold:      c.cfg.Threshold(),
		tracerProvider: otel.GetTracerProvider(),
	})

	ln, err := net.Listen("tcp", c.cfg.Server.Addr)
	if err != nil {
		return errors.New(errors.CodeArgument).WithDetail("Cannot listen on " + c.cfg.Server.Addr).Wrap(err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	c.logger.Info("debug server listening", "addr", ln.Addr().String(), "threshold", c.cfg.Threshold())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type serverOptions struct {
	logger         *slog.Logger
	registry       *prometheus.Registry
	namespace      string
	threshold      int
	tracerProvider trace.TracerProvider
}

// server is the debug HTTP server.
type server struct {
	chi.Router

	logger    *slog.Logger
	threshold int
	httpm     *middleware.Metrics
	framem    *transport.Metrics
	tp        trace.TracerProvider
	upgrader  websocket.Upgrader
}

func newServer(opts serverOptions) *server {
	s := &server{
		Router:    chi.NewRouter(),
		logger:    opts.logger.With("component", "server"),
		threshold: opts.threshold,
		httpm: middleware.NewMetrics(
			middleware.WithRegistry(opts.registry),
			middleware.WithNamespace(opts.namespace),
		),
		framem: transport.NewMetrics(
			transport.WithRegistry(opts.registry),
			transport.WithNamespace(opts.namespace),
		),
		tp: opts.tracerProvider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	s.Use(
		chimw.RequestID,
		chimw.Recoverer,
		middleware.OpenTelemetry(
			middleware.WithTracerProvider(opts.tracerProvider),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
			}),
		),
		middleware.Prometheus(s.httpm),
	)

	s.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok\n")
	})
	s.Handle("/metrics", promhttp.HandlerFor(opts.registry, promhttp.HandlerOpts{}))
	s.Route("/v1", func(r chi.Router) {
		r.Post("/frames/decode", s.handleDecode)
		r.Post("/frames/encode", s.handleEncode)
		r.Get("/ws", s.handleWebSocket)
	})
	return s
}

func (s *server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, threshold, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	f, rest, err := protocol.DecodeFrame(data, threshold)
	if err != nil {
		s.httpm.RecordDecodeError(r, err)
		s.logger.Debug("frame decode failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		s.writeError(w, http.StatusUnprocessableEntity, errors.FromError(err, data))
		return
	}
	s.writeJSON(w, http.StatusOK, newFrameReport(f, rest))
}

func (s *server) handleEncode(w http.ResponseWriter, r *http.Request) {
	payload, threshold, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := protocol.NewBuffer(payload).ToBytes(threshold)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, errors.FromError(err, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"frame": formatHex(data)})
}

// readRequest returns the request body bytes and the threshold to use.
// Bodies are hex text unless sent as application/octet-stream.
func (s *server) readRequest(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	threshold := s.threshold
	if q := r.URL.Query().Get("threshold"); q != "" {
		t, err := strconv.Atoi(q)
		if err != nil || t < -1 {
			return nil, 0, argError("threshold %q must be an integer >= -1", q)
		}
		threshold = t
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, argError("reading body: %w", err)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/octet-stream") {
		return body, threshold, nil
	}
	data, err := parseHex([]string{string(body)})
	return data, threshold, err
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, errors.FromError(err, nil).FormatJSON()+"\n")
}

// handleWebSocket echoes frames: each binary message is decoded at the
// server threshold and written back re-encoded.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	conn := transport.NewWSConn(ws,
		transport.WithLogger(s.logger),
		transport.WithMetrics(s.framem),
		transport.WithTracerProvider(s.tp),
		transport.WithThreshold(s.threshold),
	)
	defer conn.Close()

	s.httpm.RecordSessionStart()
	err = s.echo(r.Context(), conn)
	s.httpm.RecordSessionEnd(err)
	if err != nil && transport.ErrorKind(err) != "closed" {
		s.logger.Info("websocket session ended", "error", err, "kind", transport.ErrorKind(err))
	}
}

func (s *server) echo(ctx context.Context, conn transport.PacketConn) error {
	for {
		pkt, err := conn.ReadPacket(ctx)
		if err != nil {
			return err
		}
		if err := conn.WritePacket(ctx, pkt); err != nil {
			return err
		}
	}
}
