package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSplitCmd(a *app) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Shuffle dataset.csv into train.csv, val.csv and test.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("seed") {
				a.cfg.Seed = seed
			}

			counts, err := a.pipeline().Split(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "train: %s rows\n", humanize.Comma(int64(counts.Train)))
			fmt.Fprintf(out, "val:   %s rows\n", humanize.Comma(int64(counts.Val)))
			fmt.Fprintf(out, "test:  %s rows\n", humanize.Comma(int64(counts.Test)))
			return a.report(cmd)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed (default from configuration, 42)")
	return cmd
}
