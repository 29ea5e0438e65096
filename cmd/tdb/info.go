package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arloliu/tdb"
	"github.com/arloliu/tdb/item"
)

func newInfoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info <dir>",
		Short: "print database counters, fields and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			return writeInfo(cmd.OutOrStdout(), db)
		},
	}
}

func writeInfo(w io.Writer, db *tdb.DB) error {
	lookup := "linear"
	if db.HasIdentifierIndex() {
		lookup = "index"
	}
	fmt.Fprintf(w, "trails:          %d\n", db.NumTrails())
	fmt.Fprintf(w, "events:          %d\n", db.NumEvents())
	fmt.Fprintf(w, "fields:          %d\n", db.NumFields())
	fmt.Fprintf(w, "min timestamp:   %d\n", db.MinTimestamp())
	fmt.Fprintf(w, "max timestamp:   %d\n", db.MaxTimestamp())
	fmt.Fprintf(w, "max delta:       %d\n", db.MaxTimestampDelta())
	fmt.Fprintf(w, "lookup:          %s\n\n", lookup)

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Field", "Name", "Values"})
	for f := 1; f < db.NumFields(); f++ {
		name, err := db.FieldName(item.Field(f))
		if err != nil {
			return err
		}
		size, err := db.LexiconSize(item.Field(f))
		if err != nil {
			return err
		}
		tbl.Append([]string{strconv.Itoa(f), name, strconv.FormatUint(size, 10)})
	}
	tbl.Render()
	fmt.Fprintln(w)

	tbl = tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"File", "Bytes", "Mapped", "Compression"})
	for _, f := range db.Files() {
		tbl.Append([]string{
			f.Name,
			strconv.Itoa(f.Size),
			strconv.FormatBool(f.Mapped),
			f.Compression.String(),
		})
	}
	tbl.Render()

	return nil
}
