package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/boxtree"
	"github.com/hupe1980/boxtree/testutil"
	"golang.org/x/time/rate"
)

const world = 1000

type sceneConfig struct {
	dims    int
	fanout  int
	items   int
	inserts int
	queries int
	qps     float64
	extent  float32
}

type sceneResult struct {
	load     time.Duration
	insertOp time.Duration
	queryOp  [5]time.Duration
	selfClip time.Duration
	pairs    int
	depth    int
}

// runScene builds one scene and times every operation on it.
func runScene(ctx context.Context, cfg sceneConfig, seed int64, logger *boxtree.Logger, mc boxtree.MetricsCollector) (sceneResult, error) {
	var res sceneResult

	rng := testutil.NewRNG(seed)
	boxes := rng.Boxes(cfg.items+cfg.inserts, cfg.dims, 0, world, cfg.extent)

	start := time.Now()
	tree, err := boxtree.BVH[int](cfg.dims).
		Fanout(cfg.fanout).
		Logger(logger).
		Metrics(mc).
		Load(func(yield func(int) bool) {
			for i := range cfg.items {
				if !yield(i) {
					return
				}
			}
		}, func(id *int, mins, maxs []float32) {
			copy(mins, boxes[*id].Min)
			copy(maxs, boxes[*id].Max)
		})
	if err != nil {
		return res, err
	}
	res.load = time.Since(start)

	progress := rate.Sometimes{Interval: 2 * time.Second}

	start = time.Now()
	for i := cfg.items; i < len(boxes); i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return res, ctx.Err()
		}
		tree.Insert(i, boxes[i].Min, boxes[i].Max)
		progress.Do(func() {
			logger.Info("inserting", "done", i-cfg.items, "total", cfg.inserts)
		})
	}
	if cfg.inserts > 0 {
		res.insertOp = time.Since(start) / time.Duration(cfg.inserts)
	}

	lim := limiter(cfg.qps)
	hits := 0
	count := boxtree.Each(func(*int) { hits++ })

	for kind := range boxtree.QueryHalfSpace + 1 {
		start = time.Now()
		for q := range cfg.queries {
			if lim != nil {
				if err := lim.Wait(ctx); err != nil {
					return res, err
				}
			} else if q%256 == 0 && ctx.Err() != nil {
				return res, ctx.Err()
			}

			runQuery(tree, kind, rng, cfg, count)
			progress.Do(func() {
				logger.Info("querying", "kind", kind.String(), "done", q, "total", cfg.queries)
			})
		}
		if cfg.queries > 0 {
			res.queryOp[kind] = time.Since(start) / time.Duration(cfg.queries)
		}
	}

	start = time.Now()
	tree.SelfClip(0, boxtree.Pairs(func(_, _ *int) { res.pairs++ }))
	res.selfClip = time.Since(start)

	if err := tree.Validate(); err != nil {
		return res, fmt.Errorf("validate: %w", err)
	}
	res.depth = tree.Stats().Depth

	logger.Info("scene done", "hits", hits, "pairs", res.pairs, "depth", res.depth)
	return res, nil
}

func runQuery(tree *boxtree.Tree[int], kind boxtree.QueryKind, rng *testutil.RNG, cfg sceneConfig, visit boxtree.Visitor[int]) {
	switch kind {
	case boxtree.QueryRange:
		q := rng.Box(cfg.dims, 0, world, world/20)
		tree.Query(q.Min, q.Max, 0, visit)
	case boxtree.QueryRay:
		tree.RayQuery(rng.Point(cfg.dims, 0, world), rng.Point(cfg.dims, -1, 1), 0, visit)
	case boxtree.QuerySegment:
		start := rng.Point(cfg.dims, 0, world)
		end := make([]float32, cfg.dims)
		for d := range end {
			end[d] = start[d] + rng.Float32Range(-world/10, world/10)
		}
		tree.SegmentQuery(start, end, 0, visit)
	case boxtree.QueryPlanar, boxtree.QueryHalfSpace:
		plane := append(rng.Point(cfg.dims, -1, 1), rng.Float32Range(0, world))
		if kind == boxtree.QueryPlanar {
			tree.PlanarQuery(plane, 0, visit)
		} else {
			tree.HalfSpaceQuery(plane, 0, visit)
		}
	}
}
