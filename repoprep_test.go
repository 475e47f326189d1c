package repoprep_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/repoprep"
	"github.com/paveg/repoprep/internal/profile"
	"github.com/paveg/repoprep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, rows int) repoprep.Config {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "dataset.csv", rows)
	cfg := repoprep.NewConfig()
	cfg.DataDir = dir
	return cfg
}

func TestReadData(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 50)

	counts, err := repoprep.SplitDataset(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, repoprep.SplitCounts{Train: 35, Val: 10, Test: 5}, counts)

	result, err := repoprep.ReadData(ctx, cfg, repoprep.Options{
		Split: repoprep.SplitVal,
		YCol:  "stars",
		Kind:  repoprep.Numerical,
		Fix:   true,
	})
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, 10, result.X.Len())
	require.NotNil(t, result.Y)
	assert.Equal(t, "stars", result.Y.Name())
	assert.False(t, result.X.HasColumn("stars"))
	assert.False(t, result.X.HasColumn("license"))
}

func TestImputeAndDates(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 40)

	result, err := repoprep.ReadData(ctx, cfg, repoprep.Options{Split: repoprep.SplitAll})
	require.NoError(t, err)
	defer result.Release()

	imputed, err := repoprep.ImputeOutliers(ctx, cfg, result.X)
	require.NoError(t, err)
	defer imputed.Release()
	assert.NotEqual(t, "1000000", testutil.ColumnStrings(imputed, "stars")[7])

	dates, err := repoprep.DateFeatures(imputed, "createdAt")
	require.NoError(t, err)
	defer dates.Release()
	assert.True(t, dates.HasColumn("quarter"))
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 30)

	result, err := repoprep.ReadData(ctx, cfg, repoprep.Options{Split: repoprep.SplitAll, Fix: true})
	require.NoError(t, err)
	defer result.Release()

	report, err := repoprep.Profile(ctx, result.X, "isArchived")
	require.NoError(t, err)

	assert.Equal(t, 30, report.Info.Samples)
	assert.Len(t, report.Features, result.X.Width())
	assert.NotContains(t, report.Correlation.Columns, "isArchived")

	var buf bytes.Buffer
	require.NoError(t, profile.Render(&buf, report))
	assert.Contains(t, buf.String(), "languagesUsed")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repoprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\noutlier_factor: 1.5\n"), 0o600))

	t.Setenv("REPOPREP_OUTLIER_FACTOR", "2.5")
	cfg, err := repoprep.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 2.5, cfg.OutlierFactor)

	_, err = repoprep.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
