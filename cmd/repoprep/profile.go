package main

import (
	"fmt"

	"github.com/paveg/repoprep/internal/parallel"
	"github.com/paveg/repoprep/internal/prep"
	"github.com/paveg/repoprep/internal/profile"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		split       string
		fix         bool
		corrExclude []string
		counts      []string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Summarise the features of a cleaned split",
		Long: `profile prints the number of samples and features, a table with the kind,
unique count, missing share and outlier share of every feature, and the
correlation matrix of the numeric features.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			result, err := a.pipeline().Run(ctx, prep.Options{Split: prep.Split(split), Fix: fix})
			if err != nil {
				return err
			}
			defer result.Release()
			df := result.X

			pool := parallel.NewWorkerPool(a.cfg.Workers())
			defer pool.Close()

			features, err := profile.Features(ctx, df, pool)
			if err != nil {
				return err
			}
			matrix, err := profile.Correlation(df, corrExclude...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := profile.Render(out, profile.Report{
				Info:        profile.BasicInfo(df),
				Features:    features,
				Correlation: matrix,
			}); err != nil {
				return err
			}

			for _, column := range counts {
				vc, err := profile.ValueCounts(df, column)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				if err := profile.RenderValueCounts(out, column, vc, limit); err != nil {
					return err
				}
			}
			return a.report(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&split, "split", "s", string(prep.SplitAll), "split to profile: train, val, test or all")
	flags.BoolVar(&fix, "fix", false, "drop useless columns and expand languages before profiling")
	flags.StringSliceVar(&corrExclude, "corr-exclude", []string{prep.ColIsArchived}, "columns left out of the correlation matrix")
	flags.StringSliceVar(&counts, "counts", nil, "columns to print value counts for")
	flags.IntVar(&limit, "limit", 10, "maximum value count rows per column (0 = all)")
	return cmd
}
