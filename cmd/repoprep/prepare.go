package main

import (
	"fmt"

	"github.com/paveg/repoprep/internal/io"
	"github.com/paveg/repoprep/internal/prep"
	"github.com/spf13/cobra"
	progress "gopkg.in/cheggaaa/pb.v1"
)

type prepareFlags struct {
	split   string
	kind    string
	yCol    string
	exclude []string
	fix     bool
	langs   bool
	useless string
	impute  bool
	dates   string
	output  string
}

func newPrepareCmd(a *app) *cobra.Command {
	var f prepareFlags

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Clean one split and print or export the feature frame",
		Long: `prepare reads a split (splitting dataset.csv first if needed), fills missing
values, coerces dates and flags and applies the selected cleaning steps.
--dates appends calendar features derived from a timestamp column.

The result is written to --output when given; the format follows the file
extension (.csv, .parquet, .jsonl, .db or .sqlite). A --y target is written
as the last column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPrepare(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.split, "split", "s", string(prep.SplitTrain), "split to read: train, val, test or all")
	flags.StringVarP(&f.kind, "kind", "k", "", "keep only Categorical or Numerical features")
	flags.StringVarP(&f.yCol, "y", "y", "", "target column to separate from the features")
	flags.StringSliceVarP(&f.exclude, "exclude", "x", nil, "columns to drop from the features")
	flags.BoolVar(&f.fix, "fix", false, "drop all useless columns and expand languages")
	flags.BoolVar(&f.langs, "langs", false, "expand the languages column")
	flags.StringVar(&f.useless, "useless", "", "drop useless columns: obvious or all")
	flags.BoolVar(&f.impute, "impute", false, "replace outliers above Q3 + factor*IQR with the median")
	flags.StringVar(&f.dates, "dates", "", "timestamp column to derive date features from")
	flags.StringVarP(&f.output, "output", "o", "", "output file")
	_ = cobra.MarkFlagFilename(flags, "output", "csv", "parquet", "jsonl", "db", "sqlite")
	return cmd
}

func (a *app) runPrepare(cmd *cobra.Command, f prepareFlags) error {
	ctx := cmd.Context()
	p := a.pipeline()

	var bar *progress.ProgressBar
	if !a.noProgress {
		p.OnProgress = func(done, total int, step string) {
			if bar == nil {
				bar = progress.New(total)
				bar.Output = cmd.ErrOrStderr()
				bar.ShowSpeed = false
				bar.ShowTimeLeft = false
				bar.Start()
			}
			bar.Postfix(" " + step)
			bar.Set(done)
		}
	}

	result, err := p.Run(ctx, prep.Options{
		Split:       prep.Split(f.split),
		Kind:        prep.Kind(f.kind),
		YCol:        f.yCol,
		Exclude:     f.exclude,
		Fix:         f.fix,
		HandleLangs: f.langs,
		Useless:     prep.UselessMode(f.useless),
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	defer result.Release()

	df := result.X.Select(result.X.Columns()...)
	defer func() { df.Release() }()

	if f.impute {
		imputed, err := p.ImputeOutliers(ctx, df)
		if err != nil {
			return err
		}
		df.Release()
		df = imputed
	}

	if f.dates != "" {
		dates, err := p.DateFeatures(df, f.dates)
		if err != nil {
			return err
		}
		for _, name := range dates.Columns() {
			col, _ := dates.Column(name)
			col.Retain()
			next := df.WithColumn(col)
			df.Release()
			df = next
		}
		dates.Release()
	}

	if result.Y != nil {
		result.Y.Retain()
		withTarget := df.WithColumn(result.Y)
		df.Release()
		df = withTarget
	}

	out := cmd.OutOrStdout()
	if f.output == "" {
		fmt.Fprintln(out, df.String())
		return a.report(cmd)
	}

	if err := io.WriteFile(f.output, df, a.writeOptions()); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d rows x %d columns to %s\n", df.Len(), df.Width(), f.output)
	return a.report(cmd)
}

func (a *app) writeOptions() io.WriteOptions {
	opts := io.DefaultWriteOptions()
	opts.Parquet.Compression = a.cfg.Compression
	opts.SQLite.Table = a.cfg.SQLiteTable
	return opts
}
