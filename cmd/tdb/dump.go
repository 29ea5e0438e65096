package main

import (
	"context"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arloliu/tdb"
	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/internal/pool"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/trail"
)

func newDumpCmd(g *globals) *cobra.Command {
	var (
		edge       bool
		filterExpr string
	)

	cmd := &cobra.Command{
		Use:   "dump <dir> [identifier...]",
		Short: "print trails, one event per line",
		Long: `
Print the events of every trail, or of the trails with the given
identifiers. Each trail starts with its identifier; each event lists its
timestamp and the field=value pairs decoded for it.
`,
		Args: cobra.MinimumNArgs(1),
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
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				return db.Scan(context.Background(), 1, edge, f, func(id uint64, items []item.Item) error {
					return writeTrail(w, db, id, items)
				})
			}

			cur := db.NewCursor()
			for _, arg := range args[1:] {
				if err := dumpOne(w, db, cur, arg, edge, f); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(
		&edge, "edge", false, "print only the fields that changed since the previous event")
	cmd.Flags().StringVar(
		&filterExpr, "filter", "", "only print events matching the expression, e.g. 'f1=a | f1=b & f2!=c'")

	return cmd
}

func dumpOne(w io.Writer, db *tdb.DB, cur *tdb.Cursor, arg string, edge bool, f filter.Filter) error {
	key, err := uuid.Parse(arg)
	if err != nil {
		return err
	}
	id, err := db.Lookup(key)
	if err != nil {
		return err
	}
	items, err := cur.GetTrailFiltered(id, edge, f)
	if err != nil {
		return err
	}

	return writeTrail(w, db, id, items)
}

// writeTrail renders one trail into a pooled buffer and writes it to w in
// a single call.
func writeTrail(w io.Writer, db *tdb.DB, id uint64, items []item.Item) error {
	key, err := db.Identifier(id)
	if err != nil {
		return err
	}

	bb := pool.GetLineBuffer()
	defer pool.PutLineBuffer(bb)

	bb.WriteString(key.String())
	bb.WriteByte('\n')
	for ev := range trail.Events(items) {
		bb.WriteString("  ")
		if ev.Timestamp == item.FarTimestamp {
			bb.WriteString("far")
		} else {
			bb.B = strconv.AppendUint(bb.B, uint64(ev.Timestamp), 10)
		}
		for _, it := range ev.Items {
			name, err := db.FieldName(it.Field())
			if err != nil {
				return err
			}
			value, err := db.Value(it)
			if err != nil {
				return err
			}
			bb.WriteByte(' ')
			bb.WriteString(name)
			bb.WriteByte('=')
			bb.WriteString(value)
		}
		bb.WriteByte('\n')
	}

	_, err = bb.WriteTo(w)

	return err
}
