package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pymine-dev/mcwire/pkg/protocol"
	"github.com/pymine-dev/mcwire/pkg/transport"
)

// benchPacketID tags the packets sent by bench clients.
const benchPacketID = 0x01

type benchProfile struct {
	Clients      int
	Duration     time.Duration
	RPS          float64
	PayloadBytes int
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Clients:      10,
		Duration:     5 * time.Second,
		RPS:          50,
		PayloadBytes: 64,
	},
	"standard": {
		Clients:      50,
		Duration:     15 * time.Second,
		RPS:          100,
		PayloadBytes: 256,
	},
	"stress": {
		Clients:      200,
		Duration:     30 * time.Second,
		RPS:          200,
		PayloadBytes: 4096,
	},
}

type benchConfig struct {
	Profile      string
	Clients      int
	Duration     time.Duration
	RPS          float64
	PayloadBytes int
	Threshold    int
	URL          string
	JSONOutput   string
	Timeout      time.Duration
}

type benchCounters struct {
	framesSent   atomic.Uint64
	framesEchoed atomic.Uint64
	bytesSent    atomic.Uint64
}

type benchErrors struct {
	dialFailures  atomic.Uint64
	writeFailures atomic.Uint64
	readFailures  atomic.Uint64
	mismatches    atomic.Uint64
	totalErrors   atomic.Uint64
}

func benchCmd(c *cli) *cobra.Command {
	cfg := benchConfig{Profile: "fast"}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure frame round trips through the WebSocket echo",
		Long: `Open many WebSocket clients against /v1/ws and time each frame from
send until its echo has been read and decoded.

Without --url an in-process debug server is started on a loopback
port. Against a remote server, --threshold must match the server's.

Profiles:
  fast      10 clients, 5s, 50 frames/s each, 64 byte payloads
  standard  50 clients, 15s, 100 frames/s each, 256 byte payloads
  stress    200 clients, 30s, 200 frames/s each, 4096 byte payloads

Explicit flags override the profile.

Examples:
  mcwire bench
  mcwire bench --profile standard --threshold 256
  mcwire bench --url ws://localhost:8025/v1/ws --json report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := benchProfiles[cfg.Profile]
			if !ok {
				return argError("unknown profile %q (use fast, standard or stress)", cfg.Profile)
			}
			flags := cmd.Flags()
			if !flags.Changed("clients") {
				cfg.Clients = p.Clients
			}
			if !flags.Changed("duration") {
				cfg.Duration = p.Duration
			}
			if !flags.Changed("rps") {
				cfg.RPS = p.RPS
			}
			if !flags.Changed("payload") {
				cfg.PayloadBytes = p.PayloadBytes
			}
			if !flags.Changed("threshold") {
				cfg.Threshold = c.cfg.Threshold()
			}
			if cfg.Clients < 1 || cfg.RPS <= 0 || cfg.Duration <= 0 {
				return argError("clients, rps and duration must be positive")
			}
			if cfg.PayloadBytes < 1 || cfg.PayloadBytes > protocol.MaxStringLength {
				return argError("payload must be between 1 and %d bytes", protocol.MaxStringLength)
			}

			return runBench(cmd.Context(), c.logger, cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Profile, "profile", "p", cfg.Profile, "Workload profile: fast, standard or stress")
	flags.IntVar(&cfg.Clients, "clients", 0, "Concurrent clients")
	flags.DurationVarP(&cfg.Duration, "duration", "d", 0, "Run time")
	flags.Float64Var(&cfg.RPS, "rps", 0, "Frames per second per client")
	flags.IntVar(&cfg.PayloadBytes, "payload", 0, "Payload string length in bytes")
	flags.IntVarP(&cfg.Threshold, "threshold", "t", -1, "Compression threshold (default from mcwire.json)")
	flags.StringVar(&cfg.URL, "url", "", "WebSocket URL of a running server (default: in-process server)")
	flags.StringVar(&cfg.JSONOutput, "json", "", "Write the report as JSON to this path (- for stdout)")
	flags.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "Per-frame echo timeout")

	return cmd
}

func runBench(ctx context.Context, logger *slog.Logger, cfg benchConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.URL == "" {
		url, stop, err := startBenchServer(logger, cfg.Threshold)
		if err != nil {
			return err
		}
		defer stop()
		cfg.URL = url
	}
	logger.Info("bench starting", "url", cfg.URL, "clients", cfg.Clients, "duration", cfg.Duration)

	var (
		counters benchCounters
		errs     benchErrors
		mu       sync.Mutex
		samples  []time.Duration
		wg       sync.WaitGroup
	)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	for i := 0; i < cfg.Clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			local, err := runBenchClient(runCtx, id, cfg, &counters, &errs)
			if err != nil {
				errs.totalErrors.Add(1)
				logger.Debug("bench client stopped", "client", id, "error", err)
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	report := buildBenchReport(cfg, elapsed, samples, &counters, &errs, before, after)
	writeBenchSummary(out, report)

	if cfg.JSONOutput != "" {
		if err := writeBenchJSON(cfg.JSONOutput, out, report); err != nil {
			return err
		}
	}
	if report.Throughput.FramesTotal == 0 {
		return stderrors.New("bench: no frame completed a round trip")
	}
	return nil
}

// startBenchServer serves the echo endpoint on a loopback port.
func startBenchServer(logger *slog.Logger, threshold int) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{
		Handler: newServer(serverOptions{
			logger:         logger,
			registry:       prometheus.NewRegistry(),
			namespace:      "mcwire",
			threshold:      threshold,
			tracerProvider: noop.NewTracerProvider(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return "ws://" + ln.Addr().String() + "/v1/ws", stop, nil
}

func runBenchClient(ctx context.Context, id int, cfg benchConfig, counters *benchCounters, errs *benchErrors) ([]time.Duration, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		errs.dialFailures.Add(1)
		return nil, fmt.Errorf("dial: %w", err)
	}
	conn := transport.NewWSConn(ws,
		transport.WithThreshold(cfg.Threshold),
		transport.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	defer conn.Close()

	period := time.Duration(float64(time.Second) / cfg.RPS)
	var (
		seq     uint64
		samples []time.Duration
	)

	for {
		select {
		case <-ctx.Done():
			return samples, nil
		default:
		}

		seq++
		token := makeToken(id, seq, cfg.PayloadBytes)
		pkt, err := benchPacket(token)
		if err != nil {
			return samples, err
		}

		start := time.Now()
		if err := conn.WritePacket(ctx, pkt); err != nil {
			if ctx.Err() != nil {
				return samples, nil
			}
			errs.writeFailures.Add(1)
			return samples, fmt.Errorf("write: %w", err)
		}
		counters.framesSent.Add(1)
		counters.bytesSent.Add(uint64(pkt.Len()))

		readCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		echo, err := conn.ReadPacket(readCtx)
		cancel()
		if err != nil {
			errs.readFailures.Add(1)
			return samples, fmt.Errorf("read: %w", err)
		}
		if err := checkEcho(echo, token); err != nil {
			errs.mismatches.Add(1)
			return samples, err
		}

		rtt := time.Since(start)
		counters.framesEchoed.Add(1)
		samples = append(samples, rtt)

		if sleep := period - rtt; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return samples, nil
			case <-timer.C:
			}
		}
	}
}

// benchPacket builds a packet of benchPacketID followed by token.
func benchPacket(token string) (*protocol.Buffer, error) {
	s, err := protocol.PackString(token)
	if err != nil {
		return nil, err
	}
	b := &protocol.Buffer{}
	b.Write(protocol.PackVarInt(benchPacketID))
	b.Write(s)
	return b, nil
}

func checkEcho(b *protocol.Buffer, token string) error {
	id, err := b.UnpackVarInt()
	if err != nil {
		return fmt.Errorf("echo packet id: %w", err)
	}
	got, err := b.UnpackString()
	if err != nil {
		return fmt.Errorf("echo token: %w", err)
	}
	if id != benchPacketID || got != token || b.Remaining() != 0 {
		return fmt.Errorf("echo mismatch: packet 0x%02x, token %q", id, got)
	}
	return nil
}

// makeToken returns a token unique to (clientID, seq) padded to size bytes.
func makeToken(clientID int, seq uint64, size int) string {
	token := fmt.Sprintf("c%d-s%d-", clientID, seq)
	if len(token) >= size {
		return token
	}
	return token + strings.Repeat("x", size-len(token))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string              `json:"version"`
	Run        benchRunInfo        `json:"run"`
	Workload   benchWorkload       `json:"workload"`
	LatencyMS  benchLatency        `json:"latency_ms"`
	Throughput benchThroughput     `json:"throughput"`
	GC         benchGC             `json:"gc"`
	Errors     benchErrorBreakdown `json:"errors"`
}

type benchRunInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type benchWorkload struct {
	Profile      string  `json:"profile"`
	URL          string  `json:"url"`
	Clients      int     `json:"clients"`
	DurationMS   int64   `json:"duration_ms"`
	RPSPerClient float64 `json:"rps_per_client"`
	PayloadBytes int     `json:"payload_bytes"`
	Threshold    int     `json:"threshold"`
}

type benchLatency struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type benchThroughput struct {
	FramesSent   uint64  `json:"frames_sent"`
	FramesTotal  uint64  `json:"frames_total"`
	FramesPerSec float64 `json:"frames_per_sec"`
	BytesPerSec  float64 `json:"bytes_per_sec"`
}

type benchGC struct {
	AllocMB      float64 `json:"alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

type benchErrorBreakdown struct {
	TotalErrors   uint64 `json:"total_errors"`
	DialFailures  uint64 `json:"dial_failures"`
	WriteFailures uint64 `json:"write_failures"`
	ReadFailures  uint64 `json:"read_failures"`
	Mismatches    uint64 `json:"mismatches"`
}

func buildBenchReport(
	cfg benchConfig,
	elapsed time.Duration,
	samples []time.Duration,
	counters *benchCounters,
	errs *benchErrors,
	before, after runtime.MemStats,
) benchReport {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	report := benchReport{
		Version: version,
		Run: benchRunInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: benchWorkload{
			Profile:      cfg.Profile,
			URL:          cfg.URL,
			Clients:      cfg.Clients,
			DurationMS:   cfg.Duration.Milliseconds(),
			RPSPerClient: cfg.RPS,
			PayloadBytes: cfg.PayloadBytes,
			Threshold:    cfg.Threshold,
		},
		LatencyMS: benchLatency{
			Min: ms(percentile(samples, 0)),
			P50: ms(percentile(samples, 0.50)),
			P95: ms(percentile(samples, 0.95)),
			P99: ms(percentile(samples, 0.99)),
			Max: ms(percentile(samples, 1)),
		},
		Throughput: benchThroughput{
			FramesSent:  counters.framesSent.Load(),
			FramesTotal: counters.framesEchoed.Load(),
		},
		GC: benchGC{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1 << 20),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / 1e6,
		},
		Errors: benchErrorBreakdown{
			TotalErrors:   errs.totalErrors.Load(),
			DialFailures:  errs.dialFailures.Load(),
			WriteFailures: errs.writeFailures.Load(),
			ReadFailures:  errs.readFailures.Load(),
			Mismatches:    errs.mismatches.Load(),
		},
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.Throughput.FramesPerSec = float64(report.Throughput.FramesTotal) / secs
		report.Throughput.BytesPerSec = float64(counters.bytesSent.Load()) / secs
	}
	return report
}

func writeBenchSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== mcwire frame echo benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Target: %s (threshold %d)\n", report.Workload.URL, report.Workload.Threshold)
	fmt.Fprintf(w, "Clients: %d\n", report.Workload.Clients)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target per-client rate: %.2f frames/s\n", report.Workload.RPSPerClient)
	fmt.Fprintf(w, "Payload bytes: %d\n", report.Workload.PayloadBytes)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Frames echoed: %d of %d sent\n", report.Throughput.FramesTotal, report.Throughput.FramesSent)
	fmt.Fprintf(w, "Throughput: %.1f frames/s, %.1f KiB/s sent\n", report.Throughput.FramesPerSec, report.Throughput.BytesPerSec/1024)
	fmt.Fprintf(w, "Errors: %d\n", report.Errors.TotalErrors)
	fmt.Fprintln(w)

	if report.Throughput.FramesTotal == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "RTT (encode -> server decode/encode -> client decode):")
		fmt.Fprintf(w, "  min: %.2f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:    %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  num_gc:   %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause: %.2f ms (total)\n", report.GC.PauseTotalMS)
}

func writeBenchJSON(path string, stdout io.Writer, report benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
