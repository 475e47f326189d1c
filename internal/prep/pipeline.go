package prep

import (
	"context"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/config"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/io"
	"github.com/paveg/repoprep/internal/monitoring"
	"github.com/paveg/repoprep/internal/parallel"
	"go.uber.org/zap"
)

// Pipeline runs the preparation steps with a shared configuration, logger
// and metrics collector.
type Pipeline struct {
	// OnProgress, when set, is called after each step of Run with the number
	// of finished steps and the planned total.
	OnProgress func(done, total int, step string)

	cfg     config.Config
	logger  *zap.Logger
	metrics *monitoring.MetricsCollector
	mem     memory.Allocator
}

// New creates a pipeline. A nil logger logs nothing and a nil collector
// records nothing.
func New(cfg config.Config, logger *zap.Logger, metrics *monitoring.MetricsCollector) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg.WithDefaults(),
		logger:  logger,
		metrics: metrics,
		mem:     memory.NewGoAllocator(),
	}
}

// Config returns the resolved configuration.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// ReadData runs the full pipeline with a default logger-less pipeline.
func ReadData(ctx context.Context, cfg config.Config, opts Options) (*Result, error) {
	return New(cfg, nil, nil).Run(ctx, opts)
}

// Split shuffles and splits the dataset file.
func (p *Pipeline) Split(ctx context.Context) (SplitCounts, error) {
	var counts SplitCounts
	err := p.metrics.RecordStep("SplitDataset", true, func() (int, int, error) {
		var err error
		counts, err = SplitDataset(ctx, p.cfg, p.mem)
		return counts.Total(), 0, err
	})
	if err != nil {
		p.logger.Error("split failed", zap.String("dir", p.cfg.DataDir), zap.Error(err))
		return SplitCounts{}, err
	}
	p.logger.Info("dataset split",
		zap.String("dir", p.cfg.DataDir),
		zap.Uint64("seed", p.cfg.Seed),
		zap.Int("train", counts.Train),
		zap.Int("val", counts.Val),
		zap.Int("test", counts.Test))
	return counts, nil
}

// Load reads one split, splitting the dataset first when no split file
// exists yet.
func (p *Pipeline) Load(ctx context.Context, split Split) (*dataframe.DataFrame, error) {
	path, err := SplitPath(p.cfg, split)
	if err != nil {
		return nil, err
	}

	if !splitsExist(p.cfg) {
		p.logger.Debug("no split files found, splitting", zap.String("dir", p.cfg.DataDir))
		if _, err := p.Split(ctx); err != nil {
			return nil, err
		}
	}

	return p.step("ReadData", false, func() (*dataframe.DataFrame, error) {
		return io.ReadFile(path, p.mem)
	})
}

// Run loads opts.Split and applies the cleaning steps selected by opts.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total, done := plannedSteps(opts), 0
	progress := func(name string) {
		done++
		if p.OnProgress != nil {
			p.OnProgress(done, total, name)
		}
	}

	df, err := p.Load(ctx, opts.Split)
	if err != nil {
		return nil, err
	}
	progress("ReadData")
	cur := df
	defer func() {
		if cur != nil {
			cur.Release()
		}
	}()

	apply := func(name string, fn func(*dataframe.DataFrame) (*dataframe.DataFrame, error)) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := p.step(name, false, func() (*dataframe.DataFrame, error) { return fn(cur) })
		if err != nil {
			return err
		}
		cur.Release()
		cur = out
		progress(name)
		return nil
	}

	steps := []struct {
		name    string
		enabled bool
		fn      func(*dataframe.DataFrame) (*dataframe.DataFrame, error)
	}{
		{"FillMissing", true, func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return FillMissing(df, p.mem)
		}},
		{"CoerceTypes", true, func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return CoerceTypes(df, p.mem)
		}},
		{"DropUseless", opts.uselessMode() != "", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return DropUseless(df, opts.uselessMode())
		}},
		{"HandleLanguages", opts.HandleLangs || opts.Fix, func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return HandleLanguages(df, p.mem)
		}},
	}
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := apply(s.name, s.fn); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	if opts.YCol != "" {
		err := apply("ExtractTarget", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			x, y, err := ExtractTarget(df, opts.YCol)
			result.Y = y
			return x, err
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.Kind != "" {
		err := apply("SelectKind", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return SelectKind(df, opts.Kind, p.mem)
		})
		if err != nil {
			result.Release()
			return nil, err
		}
	}

	if len(opts.Exclude) > 0 {
		err := apply("Exclude", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return Exclude(df, opts.Exclude...)
		})
		if err != nil {
			result.Release()
			return nil, err
		}
	}

	result.X = cur
	cur = nil
	return result, nil
}

// ImputeOutliers runs ImputeOutliers with the configured factor. Frames
// shorter than the parallel threshold are processed on a single worker.
func (p *Pipeline) ImputeOutliers(ctx context.Context, df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	workers := p.cfg.Workers()
	if df.Len() < p.cfg.ParallelThreshold {
		workers = 1
	}
	pool := parallel.NewWorkerPool(workers)
	defer pool.Close()

	return p.step("ImputeOutliers", workers > 1, func() (*dataframe.DataFrame, error) {
		return ImputeOutliers(ctx, df, p.cfg.OutlierFactor, pool, p.mem)
	})
}

// DateFeatures runs DateFeatures on column.
func (p *Pipeline) DateFeatures(df *dataframe.DataFrame, column string) (*dataframe.DataFrame, error) {
	return p.step("DateFeatures", false, func() (*dataframe.DataFrame, error) {
		return DateFeatures(df, column, p.mem)
	})
}

// step runs fn, logs the resulting shape and records it as a metric.
func (p *Pipeline) step(name string, parallel bool, fn func() (*dataframe.DataFrame, error)) (*dataframe.DataFrame, error) {
	start := time.Now()
	var out *dataframe.DataFrame
	err := p.metrics.RecordStep(name, parallel, func() (int, int, error) {
		var err error
		out, err = fn()
		if err != nil {
			return 0, 0, err
		}
		return out.Len(), out.Width(), nil
	})
	if err != nil {
		p.logger.Debug("step failed", zap.String("step", name), zap.Error(err))
		return nil, err
	}

	p.logger.Debug("step finished",
		zap.String("step", name),
		zap.Int("rows", out.Len()),
		zap.Int("columns", out.Width()),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// plannedSteps counts the steps Run performs for opts, reading included.
func plannedSteps(opts Options) int {
	n := 3
	if opts.uselessMode() != "" {
		n++
	}
	if opts.HandleLangs || opts.Fix {
		n++
	}
	if opts.YCol != "" {
		n++
	}
	if opts.Kind != "" {
		n++
	}
	if len(opts.Exclude) > 0 {
		n++
	}
	return n
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
