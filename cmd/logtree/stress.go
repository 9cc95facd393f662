package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/logtree"
	"github.com/lixenwraith/logtree/compat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"golang.org/x/time/rate"
)

type stressOptions struct {
	workers     int
	records     int
	perSecond   float64
	messageSize int
	metricsAddr string
}

func newStressCmd(opts *globalOptions) *cobra.Command {
	so := &stressOptions{}

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer the file transport from concurrent writers",
		Long: `Stress writes records from many goroutines, each through its own child
node, into one file transport. Small --set max_file_size values force frequent
rotation so the write queue, rotation and retention run under contention.
With --metrics-addr the transport counters are served for Prometheus.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.fileConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStress(ctx, cmd, cfg, so)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&so.workers, "workers", "w", 8, "concurrent writers")
	flags.IntVarP(&so.records, "records", "r", 1000, "records per writer")
	flags.Float64Var(&so.perSecond, "rate", 0, "records per second across all writers, 0 for unlimited")
	flags.IntVar(&so.messageSize, "message-size", 64, "approximate payload size in bytes")
	flags.StringVar(&so.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	return cmd
}

func runStress(ctx context.Context, cmd *cobra.Command, cfg *logtree.FileConfig, so *stressOptions) error {
	if so.workers < 1 || so.records < 0 {
		return fmt.Errorf("workers must be positive and records non-negative")
	}

	report, done, err := consoleLogger(cmd)
	if err != nil {
		return err
	}
	defer done()

	root := logtree.New("stress")
	file, err := root.CreateFileTransport(cfg)
	if err != nil {
		return err
	}
	defer file.Close()

	if so.metricsAddr != "" {
		stopMetrics, err := serveMetrics(so.metricsAddr, file, report)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if so.perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(so.perSecond), so.workers)
	}

	payload := strings.Repeat("x", max(so.messageSize, 0))
	start := time.Now()

	p := pool.New().WithContext(ctx).WithMaxGoroutines(so.workers)
	for w := 0; w < so.workers; w++ {
		worker := root.CreateChild(fmt.Sprintf("worker-%02d", w))
		p.Go(func(ctx context.Context) error {
			session := uuid.NewString()
			for i := 0; i < so.records; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				worker.Info("session", session, "seq", i, "payload", payload)
			}
			return nil
		})
	}
	runErr := p.Wait()

	if err := file.Sync(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	stats := file.Stats()

	report.Info("records", stats.Records, "bytes", stats.Bytes, "rotations", stats.Rotations,
		"cleaned", stats.Cleaned, "elapsed", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		report.Info("throughput", fmt.Sprintf("%.0f records/s", float64(stats.Records)/elapsed.Seconds()))
	}
	if stats.Dropped > 0 || stats.Errors > 0 {
		report.Warning("dropped", stats.Dropped, "errors", stats.Errors)
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// serveMetrics exposes the transport counters over fasthttp
func serveMetrics(addr string, file *logtree.FileTransport, report *logtree.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(logtree.NewCollector("logtree", file)); err != nil {
		return nil, err
	}

	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/metrics" {
				ctx.Error("not found", fasthttp.StatusNotFound)
				return
			}
			handler(ctx)
		},
		Logger: compat.NewFastHTTPAdapter(report.CreateChild("metrics")),
	}

	go func() {
		if err := server.ListenAndServe(addr); err != nil {
			report.Error("metrics server:", err)
		}
	}()
	report.Info("serving metrics on", addr+"/metrics")

	return func() { _ = server.Shutdown() }, nil
}
