// Package repoprep prepares the GitHub repositories dataset for modelling.
//
// It splits dataset.csv into seeded train/val/test files and turns a split
// into a feature frame: missing values become sentinels (-1 or "-1"),
// createdAt becomes a timestamp and the flag columns integers, useless
// columns are dropped and the languages column is expanded into
// languagesUsed and languagesSizes. Outliers above Q3 + 3*IQR can be
// replaced with the column median.
//
// Frames returned by this package must be released by the caller:
//
//	result, err := repoprep.ReadData(ctx, repoprep.NewConfig(), repoprep.Options{Fix: true})
//	if err != nil {
//		return err
//	}
//	defer result.Release()
package repoprep

import (
	"context"

	"github.com/paveg/repoprep/internal/config"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/prep"
	"github.com/paveg/repoprep/internal/profile"
	"go.uber.org/zap"
)

type (
	// Config controls the dataset location, the split and the cleaning.
	Config = config.Config
	// Options selects the split and the cleaning steps ReadData applies.
	Options = prep.Options
	// Result holds the feature frame and the optional target column.
	Result = prep.Result
	// DataFrame is a column-ordered, Arrow-backed table.
	DataFrame = dataframe.DataFrame
	// Series is one typed column of a DataFrame.
	Series = dataframe.ISeries
	// SplitCounts holds the row counts of the three split files.
	SplitCounts = prep.SplitCounts
	// Pipeline runs the steps with a shared logger and metrics collector.
	Pipeline = prep.Pipeline
	// Report is the profile of a frame.
	Report = profile.Report
)

// Splits.
const (
	SplitTrain = prep.SplitTrain
	SplitVal   = prep.SplitVal
	SplitTest  = prep.SplitTest
	SplitAll   = prep.SplitAll
)

// Feature kinds for Options.Kind.
const (
	Categorical = prep.KindCategorical
	Numerical   = prep.KindNumerical
)

// Modes for Options.Useless.
const (
	UselessObvious = prep.UselessObvious
	UselessAll     = prep.UselessAll
)

// NewConfig returns the default configuration.
func NewConfig() Config {
	return config.NewConfig()
}

// LoadConfig reads a JSON or YAML configuration file and applies REPOPREP_*
// environment overrides on top.
func LoadConfig(path string) (Config, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return Config{}, err
	}
	return config.LoadFromEnv(cfg), nil
}

// NewPipeline creates a pipeline logging to logger, which may be nil.
func NewPipeline(cfg Config, logger *zap.Logger) *Pipeline {
	return prep.New(cfg, logger, nil)
}

// SplitDataset shuffles cfg's dataset file into the three split files.
func SplitDataset(ctx context.Context, cfg Config) (SplitCounts, error) {
	return NewPipeline(cfg, nil).Split(ctx)
}

// ReadData loads the split named by opts, splitting first if needed, and
// applies the cleaning steps opts selects.
func ReadData(ctx context.Context, cfg Config, opts Options) (*Result, error) {
	return prep.ReadData(ctx, cfg, opts)
}

// ImputeOutliers replaces the values of every numeric column of df above
// Q3 + cfg.OutlierFactor*IQR with the column median.
func ImputeOutliers(ctx context.Context, cfg Config, df *DataFrame) (*DataFrame, error) {
	return NewPipeline(cfg, nil).ImputeOutliers(ctx, df)
}

// DateFeatures returns a frame of hour, day_of_week, day_of_year, month,
// quarter and year columns derived from the timestamp column.
func DateFeatures(df *DataFrame, column string) (*DataFrame, error) {
	return prep.DateFeatures(df, column, nil)
}

// Profile summarises df. Columns in corrExclude are left out of the
// correlation matrix.
func Profile(ctx context.Context, df *DataFrame, corrExclude ...string) (Report, error) {
	features, err := profile.Features(ctx, df, nil)
	if err != nil {
		return Report{}, err
	}
	matrix, err := profile.Correlation(df, corrExclude...)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Info:        profile.BasicInfo(df),
		Features:    features,
		Correlation: matrix,
	}, nil
}
