package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DatasetColumns is the header of the raw fixture dataset.
var DatasetColumns = []string{
	"owner", "name", "nameWithOwner", "description",
	"stars", "forkCount", "watchers", "pullRequests", "diskUsageKb",
	"primaryLanguage", "license", "codeOfConduct",
	"createdAt", "pushedAt",
	"isArchived", "isFork", "forkingAllowed", "parent",
	"languages",
}

var (
	baseOwners    = []string{"acme", "octo", "gopher", "ferris"}
	baseStars     = []int64{120, 35, 980, 7, 64, 410, 3, 52}
	baseLicenses  = []string{"MIT License", "Apache License 2.0", "GNU General Public License v3.0"}
	basePrimary   = []string{"Go", "Python", "Rust", "JavaScript", "C"}
	baseLanguages = [][]string{
		{"Go", "Makefile"},
		{"Python"},
		{"Rust", "Shell", "Dockerfile"},
		{"JavaScript", "HTML", "CSS"},
		{"C"},
	}
	epoch = time.Date(2012, 3, 5, 8, 30, 0, 0, time.UTC)
)

func ownerName(i int) string { return baseOwners[i%len(baseOwners)] }
func repoName(i int) string  { return fmt.Sprintf("repo-%03d", i) }

func createdAt(i int) time.Time {
	return epoch.Add(time.Duration(i) * (37*24*time.Hour + 5*time.Hour + 11*time.Minute))
}

// DatasetRow returns row i of the raw fixture. The fixture is deterministic:
//   - description is empty every 5th row,
//   - primaryLanguage is empty every 6th row,
//   - license is empty every 3rd row,
//   - languages is empty every 10th row,
//   - row 7 carries a star count far above the others.
func DatasetRow(i int) []string {
	stars := baseStars[i%len(baseStars)]
	if i == 7 {
		stars = 1_000_000
	}

	description := fmt.Sprintf("Tool number %d, with commas", i)
	if i%5 == 0 {
		description = ""
	}
	primary := basePrimary[i%len(basePrimary)]
	if i%6 == 5 {
		primary = ""
	}
	license := baseLicenses[i%len(baseLicenses)]
	if i%3 == 2 {
		license = ""
	}
	codeOfConduct := ""
	if i%7 == 0 {
		codeOfConduct = "Contributor Covenant"
	}
	languages := ""
	if i%10 != 4 {
		languages = LanguagesLiteral(baseLanguages[i%len(baseLanguages)], int64(i+1))
	}

	created := createdAt(i)
	return []string{
		ownerName(i),
		repoName(i),
		ownerName(i) + "/" + repoName(i),
		description,
		strconv.FormatInt(stars, 10),
		strconv.Itoa(i * 3),
		strconv.Itoa(i % 10),
		strconv.Itoa(i % 4),
		strconv.Itoa(100*i + 1),
		primary,
		license,
		codeOfConduct,
		created.Format(time.RFC3339),
		created.Add(90 * 24 * time.Hour).Format(time.RFC3339),
		pyBool(i%9 == 0),
		"False",
		"True",
		"",
		languages,
	}
}

// LanguagesLiteral renders names as a Python literal list of dicts with
// sizes scale, 2*scale, 3*scale...
func LanguagesLiteral(names []string, scale int64) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("{'name': '%s', 'size': %d}", name, scale*int64(i+1))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DatasetCSV renders the first rows rows of the raw fixture as CSV.
func DatasetCSV(rows int) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(DatasetColumns)
	for i := range rows {
		_ = w.Write(DatasetRow(i))
	}
	w.Flush()
	return buf.String()
}

// WriteDataset writes the raw fixture to dir/name and returns the path.
func WriteDataset(tb testing.TB, dir, name string, rows int) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, []byte(DatasetCSV(rows)), 0o600))
	return path
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
