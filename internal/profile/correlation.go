package profile

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/series"
	"github.com/paveg/repoprep/internal/stats"
)

// Matrix is a symmetric correlation matrix.
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for the named pair, or NaN when either is absent.
func (m *Matrix) At(a, b string) float64 {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

func (m *Matrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Correlation computes pairwise Pearson coefficients over every non-string
// column except exclude. Each pair uses the rows where both cells are
// present; pairs with fewer than two such rows or no variance give NaN.
// Excluded names that are not in the frame are ignored.
func Correlation(df *dataframe.DataFrame, exclude ...string) (*Matrix, error) {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var names []string
	var columns [][]float64
	var validity [][]bool
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		if skip[name] || col.DataType().ID() == arrow.STRING {
			continue
		}
		values, valid, err := series.Float64Values(col)
		if err != nil {
			return nil, errors.NewUnsupportedTypeError("Correlation", name, col.DataType().String())
		}
		names = append(names, name)
		columns = append(columns, values)
		validity = append(validity, valid)
	}

	k := len(names)
	m := &Matrix{Columns: names, Values: make([][]float64, k)}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			var r float64
			if i == j {
				r = selfCorrelation(columns[i], validity[i])
			} else {
				x, y := pairwise(columns[i], validity[i], columns[j], validity[j])
				r = stats.Pearson(x, y)
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// selfCorrelation is 1, or NaN for a column without variance.
func selfCorrelation(values []float64, valid []bool) float64 {
	present := presentValues(values, valid)
	if r := stats.Pearson(present, present); math.IsNaN(r) {
		return r
	}
	return 1
}

func pairwise(x []float64, xValid []bool, y []float64, yValid []bool) ([]float64, []float64) {
	if xValid == nil && yValid == nil {
		return x, y
	}
	px := make([]float64, 0, len(x))
	py := make([]float64, 0, len(y))
	for i := range x {
		if (xValid == nil || xValid[i]) && (yValid == nil || yValid[i]) {
			px = append(px, x[i])
			py = append(py, y[i])
		}
	}
	return px, py
}
