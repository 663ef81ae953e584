package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	promadapter "github.com/gdmec07150948/NetX/adapters/prometheus"
	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/core/hub"
)

type runFlags struct {
	total       int
	producers   int
	mode        string
	scheduler   string
	lanes       int
	maxInflight int
	depth       int
	configPath  string
	metricsAddr string
	batch       int
	verbose     bool
}

func newRunCmd() *cobra.Command {
	f := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit messages to one actor and verify ordering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return run(ctx, f)
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&f.total, "messages", "n", 200_000, "total messages")
	fl.IntVarP(&f.producers, "producers", "p", runtime.GOMAXPROCS(0)*4, "concurrent submitters")
	fl.StringVar(&f.mode, "mode", "action", "submission mode: action, await or func")
	fl.StringVar(&f.scheduler, "scheduler", "go", "scheduler kind: go, inline or lanes")
	fl.IntVar(&f.lanes, "lanes", 0, "lane count for --scheduler lanes")
	fl.IntVar(&f.maxInflight, "max-concurrent", 0, "drain loop bound for --scheduler go")
	fl.IntVar(&f.depth, "depth", 0, "max queue depth, 0 is unbounded")
	fl.StringVar(&f.configPath, "config", "", "hub YAML config, overrides scheduler flags")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fl.IntVar(&f.batch, "batch", 50_000, "progress line every N dispatched messages")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func (f runFlags) hubConfig() (hub.Config, error) {
	if f.configPath != "" {
		return hub.LoadConfig(f.configPath)
	}
	cfg := hub.Config{
		Scheduler: hub.SchedulerConfig{
			Kind:          hub.SchedulerKind(f.scheduler),
			MaxConcurrent: f.maxInflight,
			Lanes:         f.lanes,
		},
		MaxQueueDepth: f.depth,
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, f runFlags) error {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := f.hubConfig()
	if err != nil {
		return err
	}
	if f.producers <= 0 || f.total <= 0 {
		return errors.New("messages and producers must be positive")
	}

	var metrics actor.ActorMetrics
	if f.metricsAddr != "" {
		metrics = promadapter.NewActorMetrics(prometheus.DefaultRegisterer)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: f.metricsAddr, Handler: mux}
		go func() {
			log.Info("prometheus metrics server starting", slog.String("addr", f.metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("prometheus server error", slog.Any("error", err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	h, err := hub.New(hub.Options{Context: ctx, Log: log, Config: cfg, Metrics: metrics})
	if err != nil {
		return err
	}
	defer h.Dispose()

	seq := newSequencer(f.producers, f.batch, log)
	if _, err := h.Register(seq, actor.Options{}); err != nil {
		return err
	}

	log.Info("starting",
		slog.Int("messages", f.total),
		slog.Int("producers", f.producers),
		slog.String("mode", f.mode),
		slog.String("scheduler", string(cfg.Scheduler.Kind)),
	)

	startAt := time.Now()
	var rejected atomic.Int64
	perProducer := f.total / f.producers

	var wg sync.WaitGroup
	errs := make(chan error, f.producers)
	for p := 0; p < f.producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := int64(p)*int64(perProducer) + int64(i)
				err := submit(ctx, h, f.mode, id, p, i)
				switch {
				case errors.Is(err, actor.ErrQueueFull):
					rejected.Add(1)
					seq.skip(p, i)
				case err != nil:
					errs <- fmt.Errorf("producer %d message %d: %w", p, i, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return err
	}

	// FIFO: once the barrier resolves every accepted message has been dispatched
	stats, err := hub.Call[report](ctx, h, -1, cmdReport)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	took := time.Since(startAt)
	mu := getMemUsage()

	fmt.Println("==========================================")
	fmt.Printf("   dispatched: %d\n", stats.Dispatched)
	fmt.Printf("     rejected: %d\n", rejected.Load())
	fmt.Printf("out of order: %d\n", stats.OutOfOrder)
	fmt.Printf("  overlapping: %d\n", stats.Overlaps)
	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("    msgs / s: %d\n", int(float64(stats.Dispatched)/took.Seconds()))
	fmt.Printf("       memory: %d / %d MiB (alloc / sys), %d gc\n", mu.Alloc/1024/1024, mu.Sys/1024/1024, mu.NumGC)

	want := int64(perProducer*f.producers) - rejected.Load()
	if stats.Dispatched != want || stats.OutOfOrder > 0 || stats.Overlaps > 0 {
		return fmt.Errorf("verification failed: dispatched %d of %d, %d out of order, %d overlapping",
			stats.Dispatched, want, stats.OutOfOrder, stats.Overlaps)
	}
	fmt.Println("verification ok")
	return nil
}

func submit(ctx context.Context, h *hub.Hub, mode string, id int64, producer, n int) error {
	switch mode {
	case "await":
		return h.AsyncAction(ctx, id, cmdRecord, producer, n)
	case "func":
		_, err := hub.Call[int](ctx, h, id, cmdRecordValue, producer, n)
		return err
	default:
		return h.Action(ctx, id, cmdRecord, producer, n)
	}
}

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
	NumGC uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{Alloc: m.Alloc, Sys: m.Sys, NumGC: m.NumGC}
}
