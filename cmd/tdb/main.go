// Command tdb inspects trail databases.
package main

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/arloliu/tdb"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	verbose    bool
	noIndex    bool
	compressed bool
}

func (g *globals) logger(cmd *cobra.Command) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if g.verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}

	return level.NewFilter(logger, level.AllowWarn())
}

func (g *globals) open(cmd *cobra.Command, dir string) (*tdb.DB, error) {
	opts := []tdb.Option{
		tdb.WithLogger(g.logger(cmd)),
		tdb.WithCompressedFiles(g.compressed),
	}
	if g.noIndex {
		opts = append(opts, tdb.WithoutIdentifierIndex())
	}

	return tdb.Open(dir, opts...)
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "tdb [command] (flags)",
		Short:        "trail database introspection tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(
		&g.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(
		&g.noIndex, "no-index", false, "ignore cookies.index and look identifiers up linearly")
	root.PersistentFlags().BoolVar(
		&g.compressed, "compressed", true, "accept compressed sidecars in place of missing files")

	root.AddCommand(
		newInfoCmd(g),
		newDumpCmd(g),
		newLookupCmd(g),
		newStatsCmd(g),
		newIndexCmd(g),
		newCompressCmd(g),
	)

	return root
}

func main() {
	cobra.EnableCommandSorting = false
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
