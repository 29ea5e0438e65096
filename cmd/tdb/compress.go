package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/tdb/compress"
	"github.com/arloliu/tdb/format"
)

func newCompressCmd(g *globals) *cobra.Command {
	var (
		algorithm string
		remove    bool
	)

	cmd := &cobra.Command{
		Use:   "compress <dir>",
		Short: "write compressed sidecars for the database files",
		Long: `
Compress every plain file of the database into a sidecar named after the
algorithm (trails.data.zst, lexicon.browser.s2, ...). With --remove the
plain files are deleted afterwards and the database opens from the
sidecars.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := format.ParseCompression(algorithm)
			if !ok || typ == format.CompressionNone {
				return errors.Newf("unknown compression algorithm %q", algorithm)
			}

			dir := args[0]
			db, err := g.open(cmd, dir)
			if err != nil {
				return err
			}
			var names []string
			for _, f := range db.Files() {
				if f.Compression == format.CompressionNone {
					names = append(names, f.Name)
				}
			}
			if err := db.Close(); err != nil {
				return err
			}

			stats, err := compressFiles(dir, names, typ)
			if err != nil {
				return err
			}
			writeCompressionStats(cmd.OutOrStdout(), names, stats)

			if remove {
				for _, name := range names {
					if err := os.Remove(filepath.Join(dir, name)); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(
		&algorithm, "algorithm", "a", "zstd", "zstd, s2, lz4 or snappy")
	cmd.Flags().BoolVar(
		&remove, "remove", false, "delete the plain files after compressing them")

	return cmd
}

// compressFiles writes a sidecar for every named file of dir and returns
// the statistics in the order of names.
func compressFiles(dir string, names []string, typ format.CompressionType) ([]compress.CompressionStats, error) {
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil, err
	}

	stats := make([]compress.CompressionStats, len(names))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			start := time.Now()
			out, err := codec.Compress(data)
			if err != nil {
				return errors.Wrapf(err, "compress %s", name)
			}
			stats[i] = compress.CompressionStats{
				Algorithm:         typ,
				OriginalSize:      int64(len(data)),
				CompressedSize:    int64(len(out)),
				CompressionTimeNs: time.Since(start).Nanoseconds(),
			}

			return os.WriteFile(path+typ.Extension(), out, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func writeCompressionStats(w io.Writer, names []string, stats []compress.CompressionStats) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"File", "Algorithm", "Original", "Compressed", "Ratio", "Savings", "Time"})
	for i, s := range stats {
		tbl.Append([]string{
			names[i],
			s.Algorithm.String(),
			strconv.FormatInt(s.OriginalSize, 10),
			strconv.FormatInt(s.CompressedSize, 10),
			fmt.Sprintf("%.3f", s.CompressionRatio()),
			fmt.Sprintf("%.1f%%", s.SpaceSavings()),
			time.Duration(s.CompressionTimeNs).String(),
		})
	}
	tbl.Render()
}
