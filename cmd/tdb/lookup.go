package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newLookupCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <dir> <identifier|trail-id>...",
		Short: "map identifiers to trail ids and back",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			w := cmd.OutOrStdout()
			for _, arg := range args[1:] {
				if n, err := strconv.ParseUint(arg, 10, 64); err == nil {
					key, err := db.Identifier(n)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%d\t%s\n", n, key)
					continue
				}

				key, err := uuid.Parse(arg)
				if err != nil {
					return err
				}
				id, err := db.Lookup(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\n", key, id)
			}

			return nil
		},
	}
}
