package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
)

// FormatRows renders the given rows with their index and every column,
// right-aligned in the style of a dataframe printout.
func (d *Dataset) FormatRows(rows []int) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(w, "\t")
	for _, c := range d.columns {
		fmt.Fprintf(w, "%s\t", c)
	}
	fmt.Fprintln(w)

	for _, i := range rows {
		fmt.Fprintf(w, "%d\t", i)
		for _, cell := range d.rows[i] {
			fmt.Fprintf(w, "%s\t", cell)
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// FormatTable renders an arbitrary header and rows the same way as FormatRows.
func FormatTable(header []string, rows [][]string) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t")+"\t")
	}
	_ = w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// FormatNumber prints integers without a fractional part and other values
// in their shortest exact form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 0):
		return strconv.FormatFloat(f, 'f', -1, 64)
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
