package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/arloliu/tdb/ident"
	"github.com/arloliu/tdb/section"
	"github.com/arloliu/tdb/storage"
)

func newIndexCmd(g *globals) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "build the perfect-hash identifier index",
		Long: `
Build cookies.index from the identifier table so that identifier lookups
take constant time instead of a linear scan.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			path := filepath.Join(dir, section.IndexFile)
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf("%s already exists; use --force to rebuild it", path)
			}

			h, err := storage.Open(dir, storage.Config{
				Logger:    g.logger(cmd),
				SkipIndex: true,
				Sidecars:  g.compressed,
			})
			if err != nil {
				return err
			}
			defer h.Close()

			data, err := ident.Build(h.Identifiers)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d identifiers, %d bytes\n",
				path, h.Identifiers.Len(), len(data))

			return nil
		},
	}

	cmd.Flags().BoolVarP(
		&force, "force", "f", false, "overwrite an existing index")

	return cmd
}
