package profile

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Report bundles the summaries the profile command prints.
type Report struct {
	Info        Info
	Features    []Feature
	Correlation *Matrix
}

// Render writes every non-empty part of the report as aligned text tables.
func Render(w io.Writer, r Report) error {
	if err := RenderInfo(w, r.Info); err != nil {
		return err
	}
	if len(r.Features) > 0 {
		fmt.Fprintln(w)
		if err := RenderFeatures(w, r.Features); err != nil {
			return err
		}
	}
	if r.Correlation != nil && len(r.Correlation.Columns) > 0 {
		fmt.Fprintln(w)
		if err := RenderCorrelation(w, r.Correlation); err != nil {
			return err
		}
	}
	return nil
}

// RenderInfo writes the basic counts.
func RenderInfo(w io.Writer, info Info) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Basic Counts")
	fmt.Fprintf(tw, "Number of samples\t%s\n", humanize.Comma(int64(info.Samples)))
	fmt.Fprintf(tw, "Number of features\t%s\n", humanize.Comma(int64(info.Features)))
	return tw.Flush()
}

// RenderFeatures writes one row per feature.
func RenderFeatures(w io.Writer, features []Feature) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "FEATURE\tKIND\tUNIQUES\tMISSING\tOUTLIERS")
	for _, f := range features {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			f.Name, f.Kind, humanize.Comma(int64(f.Uniques)), percent(f.MissingRatio), percent(f.OutlierRatio))
	}
	return tw.Flush()
}

// RenderCorrelation writes the matrix with two decimals per cell.
func RenderCorrelation(w io.Writer, m *Matrix) error {
	tw := newTabWriter(w)
	for _, name := range m.Columns {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)
	for i, name := range m.Columns {
		fmt.Fprint(tw, name)
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				fmt.Fprint(tw, "\tNaN")
				continue
			}
			fmt.Fprintf(tw, "\t%.2f", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// RenderValueCounts writes value, count and share of total, at most limit
// rows when limit is positive.
func RenderValueCounts(w io.Writer, column string, counts []ValueCount, limit int) error {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	tw := newTabWriter(w)
	fmt.Fprintf(tw, "%s\tCOUNT\tSHARE\n", column)
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) / float64(total)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Value, humanize.Comma(int64(c.Count)), percent(share))
	}
	return tw.Flush()
}

func percent(ratio float64) string {
	return strconv.FormatFloat(math.Round(ratio*10000)/100, 'f', -1, 64) + "%"
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
