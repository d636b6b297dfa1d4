package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hupe1980/boxtree"
	"github.com/segmentio/encoding/json"
)

type runInfo struct {
	RunID  string `json:"run_id"`
	ISA    string `json:"isa"`
	Lanes  int    `json:"lanes"`
	Dims   int    `json:"dims"`
	Fanout int    `json:"fanout"`
	Items  int    `json:"items"`
}

type sceneReport struct {
	Scene      int              `json:"scene"`
	LoadNs     int64            `json:"load_ns"`
	InsertNsOp int64            `json:"insert_ns_per_op"`
	QueryNsOp  map[string]int64 `json:"query_ns_per_op"`
	SelfClipNs int64            `json:"selfclip_ns"`
	Pairs      int              `json:"pairs"`
	Depth      int              `json:"depth"`
}

type jsonReport struct {
	runInfo
	Scenes []sceneReport `json:"scenes"`
}

func report(w io.Writer, results []sceneResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	defer tw.Flush()

	fmt.Fprintln(tw, "scene\tload\tinsert/op\trange/op\tray/op\tsegment/op\tplanar/op\thalfspace/op\tselfclip\tpairs\tdepth\t")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%d\t%d\t\n",
			i, r.load, r.insertOp,
			r.queryOp[boxtree.QueryRange], r.queryOp[boxtree.QueryRay], r.queryOp[boxtree.QuerySegment],
			r.queryOp[boxtree.QueryPlanar], r.queryOp[boxtree.QueryHalfSpace],
			r.selfClip, r.pairs, r.depth)
	}
}

func reportJSON(w io.Writer, info runInfo, results []sceneResult) error {
	out := jsonReport{runInfo: info, Scenes: make([]sceneReport, len(results))}
	for i, r := range results {
		q := make(map[string]int64, len(r.queryOp))
		for kind, d := range r.queryOp {
			q[boxtree.QueryKind(kind).String()] = d.Nanoseconds() //nolint:gosec // kind < len(queryOp)
		}
		out.Scenes[i] = sceneReport{
			Scene:      i,
			LoadNs:     r.load.Nanoseconds(),
			InsertNsOp: r.insertOp.Nanoseconds(),
			QueryNsOp:  q,
			SelfClipNs: r.selfClip.Nanoseconds(),
			Pairs:      r.pairs,
			Depth:      r.depth,
		}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
