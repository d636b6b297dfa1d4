// Command boxbench builds random box scenes and times the tree operations
// on them: bulk load, insert, every query family and self-collision.
//
// Scenes run in parallel, each with its own tree. Metrics of all scenes are
// exported on -metrics-addr when set. The node kernels follow the CPU
// unless BOXTREE_SIMD forces a family (generic, neon, avx2, avx512).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/boxtree"
	"github.com/hupe1980/boxtree/internal/simd"
	"github.com/hupe1980/boxtree/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	dims        = flag.Int("dims", boxtree.DefaultDimensions, "Dimensions (1..8)")
	fanout      = flag.Int("fanout", boxtree.DefaultFanout, "Node fanout (2..64)")
	items       = flag.Int("items", 100_000, "Boxes per scene")
	inserts     = flag.Int("inserts", 10_000, "Boxes inserted one by one after the bulk load")
	scenes      = flag.Int("scenes", 4, "Number of scenes")
	parallel    = flag.Int("parallel", runtime.GOMAXPROCS(0), "Scenes run concurrently")
	queries     = flag.Int("queries", 2_000, "Queries per family and scene")
	qps         = flag.Float64("qps", 0, "Query rate limit per scene (0 = unlimited)")
	seed        = flag.Int64("seed", 1, "Seed of the first scene")
	extent      = flag.Float64("extent", 10, "Maximum box extent per axis (world is 1000 wide)")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	jsonOut     = flag.Bool("json", false, "Print the report as JSON")
)

func main() {
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level: %v", err)
	}
	runID := uuid.New().String()
	logger := &boxtree.Logger{Logger: boxtree.NewTextLogger(level).With("run", runID)}

	reg := prometheus.NewRegistry()
	collector, err := metric.NewPrometheusCollector(reg, "boxbench")
	if err != nil {
		log.Fatal(err)
	}

	if *metricsAddr != "" {
		go serveMetrics(logger, reg, *metricsAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting",
		"isa", simd.ActiveISA().String(),
		"isa_override", simd.IsOverridden(),
		"lanes", simd.Lanes(),
		"scenes", *scenes,
		"items", *items,
	)

	cfg := sceneConfig{
		dims:    *dims,
		fanout:  *fanout,
		items:   *items,
		inserts: *inserts,
		queries: *queries,
		qps:     *qps,
		extent:  float32(*extent),
	}

	results := make([]sceneResult, *scenes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))
	for i := range results {
		g.Go(func() error {
			sceneLogger := &boxtree.Logger{Logger: logger.With("scene", i)}
			res, err := runScene(gctx, cfg, *seed+int64(i), sceneLogger, collector)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			return
		}
		log.Fatal(err)
	}

	if *jsonOut {
		info := runInfo{
			RunID:  runID,
			ISA:    simd.ActiveISA().String(),
			Lanes:  simd.Lanes(),
			Dims:   *dims,
			Fanout: *fanout,
			Items:  *items,
		}
		if err := reportJSON(os.Stdout, info, results); err != nil {
			log.Fatal(err)
		}
		return
	}
	report(os.Stdout, results)
}

func serveMetrics(logger *boxtree.Logger, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}

// limiter returns a limiter for the configured query rate, nil when unlimited.
func limiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(qps), max(int(qps/10), 1))
}
