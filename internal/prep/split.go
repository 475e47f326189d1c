package prep

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/config"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/io"
	"golang.org/x/sync/errgroup"
)

// Split file names inside the data directory.
const (
	TrainFile = "train.csv"
	ValFile   = "val.csv"
	TestFile  = "test.csv"
)

// SplitCounts reports the number of rows written to each split.
type SplitCounts struct {
	Train int
	Val   int
	Test  int
}

// Total is the number of rows across the splits.
func (c SplitCounts) Total() int {
	return c.Train + c.Val + c.Test
}

// SplitPath returns the file that holds split inside cfg.DataDir.
func SplitPath(cfg config.Config, split Split) (string, error) {
	switch split {
	case SplitTrain, "":
		return filepath.Join(cfg.DataDir, TrainFile), nil
	case SplitVal:
		return filepath.Join(cfg.DataDir, ValFile), nil
	case SplitTest:
		return filepath.Join(cfg.DataDir, TestFile), nil
	case SplitAll:
		return filepath.Join(cfg.DataDir, cfg.DatasetFile), nil
	default:
		return "", errors.NewInvalidInputError("ReadData", fmt.Sprintf("unknown split %q", split))
	}
}

// Permutation returns a seeded permutation of [0, n).
func Permutation(n int, seed uint64) []int {
	rng := rand.New(rand.NewPCG(seed, seed))
	return rng.Perm(n)
}

// SplitBounds returns the row indices where val and test begin.
func SplitBounds(n int, trainRatio, valRatio float64) (trainEnd, valEnd int) {
	// round the sum so 0.7+0.2 cuts at the same row as 0.9
	cumulative := math.Round((trainRatio+valRatio)*1e12) / 1e12
	return int(trainRatio * float64(n)), int(cumulative * float64(n))
}

// SplitDataset shuffles the dataset file with the configured seed and writes
// train, val and test files next to it. The files are written concurrently.
func SplitDataset(ctx context.Context, cfg config.Config, mem memory.Allocator) (SplitCounts, error) {
	if err := cfg.Validate(); err != nil {
		return SplitCounts{}, errors.NewValidationError("SplitDataset", "", err.Error())
	}

	source := filepath.Join(cfg.DataDir, cfg.DatasetFile)
	df, err := io.ReadFile(source, mem)
	if err != nil {
		return SplitCounts{}, err
	}
	defer df.Release()

	shuffled := df.Take(Permutation(df.Len(), cfg.Seed), mem)
	defer shuffled.Release()

	n := shuffled.Len()
	trainEnd, valEnd := SplitBounds(n, cfg.TrainRatio, cfg.ValRatio)

	parts := []struct {
		file       string
		start, end int
	}{
		{TrainFile, 0, trainEnd},
		{ValFile, trainEnd, valEnd},
		{TestFile, valEnd, n},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slice := shuffled.Slice(part.start, part.end)
			defer slice.Release()
			return io.WriteFile(filepath.Join(cfg.DataDir, part.file), slice, io.DefaultWriteOptions())
		})
	}
	if err := g.Wait(); err != nil {
		return SplitCounts{}, fmt.Errorf("writing splits: %w", err)
	}

	return SplitCounts{Train: trainEnd, Val: valEnd - trainEnd, Test: n - valEnd}, nil
}

// splitsExist reports whether any of the split files is present.
func splitsExist(cfg config.Config) bool {
	for _, name := range []string{TrainFile, ValFile, TestFile} {
		if fileExists(filepath.Join(cfg.DataDir, name)) {
			return true
		}
	}
	return false
}
