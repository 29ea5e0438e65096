package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arloliu/tdb"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/trail"
)

func newStatsCmd(g *globals) *cobra.Command {
	var (
		edge       bool
		filterExpr string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "stats <dir>",
		Short: "print the distribution of events and items per trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := db.ParseFilter(filterExpr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			s := newTrailStats(db)
			if err := db.Scan(ctx, workers, edge, f, s.record); err != nil {
				return err
			}
			s.write(cmd.OutOrStdout())

			return nil
		},
	}

	cmd.Flags().BoolVar(
		&edge, "edge", false, "count edge-encoded items")
	cmd.Flags().StringVar(
		&filterExpr, "filter", "", "only count events matching the expression")
	cmd.Flags().IntVarP(
		&workers, "concurrency", "c", 4, "number of concurrent decoders")

	return cmd
}

// trailStats accumulates per-trail histograms from concurrent scan workers.
type trailStats struct {
	mu     sync.Mutex
	events *hdrhistogram.Histogram
	items  *hdrhistogram.Histogram
}

func newTrailStats(db *tdb.DB) *trailStats {
	maxEvents := int64(db.NumEvents()) + 1
	// every event of an edge-encoded trail may carry the changes plus the
	// full vector
	maxItems := maxEvents * int64(2*db.NumFields()+1)

	return &trailStats{
		events: hdrhistogram.New(0, maxEvents, 3),
		items:  hdrhistogram.New(0, maxItems, 3),
	}
}

func (s *trailStats) record(_ uint64, items []item.Item) error {
	events := 0
	for range trail.Events(items) {
		events++
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.events.RecordValue(int64(events)); err != nil {
		return err
	}

	return s.items.RecordValue(int64(len(items)))
}

func (s *trailStats) write(w io.Writer) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Per trail", "Trails", "Mean", "P50", "P90", "P99", "Max"})
	for _, row := range []struct {
		name string
		h    *hdrhistogram.Histogram
	}{
		{"events", s.events},
		{"items", s.items},
	} {
		tbl.Append([]string{
			row.name,
			fmt.Sprint(row.h.TotalCount()),
			fmt.Sprintf("%.1f", row.h.Mean()),
			fmt.Sprint(row.h.ValueAtQuantile(50)),
			fmt.Sprint(row.h.ValueAtQuantile(90)),
			fmt.Sprint(row.h.ValueAtQuantile(99)),
			fmt.Sprint(row.h.Max()),
		})
	}
	tbl.Render()
}
