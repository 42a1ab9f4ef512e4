package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// QueryHelp lists the commands understood by Query.
const QueryHelp = `columns | shape | head [n] | tail [n] | describe [column] | count [column] |
sum|mean|median|min|max|std <column> | unique <column> | value_counts <column> |
quantile <column> <q> | filter <column> <op> <value> [limit n] (op: == != > >= < <=) |
groupby <key> <sum|mean|count|min|max> <column> | sort <column> [asc|desc] [limit n]
Quote column names that contain spaces, e.g. mean "Unit Price".`

// ErrBadQuery is wrapped by every error caused by malformed query text.
var ErrBadQuery = errors.New("bad query")

const (
	defaultPreviewRows = 5

	// Caps on list-shaped answers so one observation cannot flood the prompt.
	defaultMatchRows = 20
	maxUniqueValues  = 50
)

// Query evaluates one command against the dataset and returns printable text.
func (d *Dataset) Query(q string) (string, error) {
	args, err := tokenize(q)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", fmt.Errorf("%w: empty query", ErrBadQuery)
	}

	verb := strings.ToLower(args[0])
	rest := args[1:]

	switch verb {
	case "columns":
		return d.queryColumns(), nil
	case "shape":
		return fmt.Sprintf("(%d, %d)", d.Len(), len(d.columns)), nil
	case "head", "tail":
		n, err := optionalInt(rest, 0, defaultPreviewRows)
		if err != nil {
			return "", err
		}
		return d.FormatRows(d.window(verb == "head", n)), nil
	case "describe":
		if len(rest) == 0 {
			return d.describeAll()
		}
		return d.describeColumn(rest[0])
	case "count":
		if len(rest) == 0 {
			return strconv.Itoa(d.Len()), nil
		}
		return d.countColumn(rest[0])
	case "sum", "mean", "median", "min", "max", "std":
		if len(rest) != 1 {
			return "", fmt.Errorf("%w: %s takes exactly one column", ErrBadQuery, verb)
		}
		return d.aggregate(verb, rest[0])
	case "unique":
		if len(rest) != 1 {
			return "", fmt.Errorf("%w: unique takes exactly one column", ErrBadQuery)
		}
		return d.unique(rest[0])
	case "value_counts":
		if len(rest) != 1 {
			return "", fmt.Errorf("%w: value_counts takes exactly one column", ErrBadQuery)
		}
		return d.valueCounts(rest[0])
	case "quantile":
		if len(rest) != 2 {
			return "", fmt.Errorf("%w: quantile takes a column and q", ErrBadQuery)
		}
		return d.quantile(rest[0], rest[1])
	case "filter":
		return d.filter(rest)
	case "groupby":
		if len(rest) != 3 {
			return "", fmt.Errorf("%w: groupby takes <key> <agg> <column>", ErrBadQuery)
		}
		return d.groupBy(rest[0], strings.ToLower(rest[1]), rest[2])
	case "sort":
		return d.sortBy(rest)
	default:
		return "", fmt.Errorf("%w: unknown command %q", ErrBadQuery, args[0])
	}
}

func (d *Dataset) queryColumns() string {
	rows := make([][]string, len(d.columns))
	for i, c := range d.columns {
		kind := "text"
		if d.IsNumeric(c) {
			kind = "numeric"
		}
		rows[i] = []string{strconv.Itoa(i), c, kind}
	}
	return FormatTable([]string{"#", "column", "kind"}, rows)
}

func (d *Dataset) window(head bool, n int) []int {
	n = min(n, d.Len())
	out := make([]int, 0, n)
	start := 0
	if !head {
		start = d.Len() - n
	}
	for i := start; i < start+n; i++ {
		out = append(out, i)
	}
	return out
}

func (d *Dataset) describeAll() (string, error) {
	header := []string{""}
	var stats []Summary
	for _, c := range d.columns {
		vals, err := d.Floats(c)
		if err != nil {
			continue
		}
		s, err := Describe(vals)
		if err != nil {
			continue
		}
		header = append(header, c)
		stats = append(stats, s)
	}
	if len(stats) == 0 {
		return "", fmt.Errorf("%w: dataset has no numeric columns", ErrNotNumeric)
	}

	rows := make([][]string, 0, 8)
	for _, label := range summaryLabels {
		row := []string{label}
		for _, s := range stats {
			row = append(row, FormatNumber(summaryField(s, label)))
		}
		rows = append(rows, row)
	}
	return FormatTable(header, rows), nil
}

func (d *Dataset) describeColumn(column string) (string, error) {
	vals, err := d.Floats(column)
	if err != nil {
		return "", err
	}
	s, err := Describe(vals)
	if err != nil {
		return "", fmt.Errorf("%q: %w", column, err)
	}
	rows := make([][]string, 0, len(summaryLabels))
	for _, label := range summaryLabels {
		rows = append(rows, []string{label, FormatNumber(summaryField(s, label))})
	}
	return FormatTable([]string{"", column}, rows), nil
}

var summaryLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

func summaryField(s Summary, label string) float64 {
	switch label {
	case "count":
		return float64(s.Count)
	case "mean":
		return s.Mean
	case "std":
		return s.Std
	case "min":
		return s.Min
	case "25%":
		return s.Q1
	case "50%":
		return s.Q2
	case "75%":
		return s.Q3
	case "max":
		return s.Max
	}
	return math.NaN()
}

func (d *Dataset) countColumn(column string) (string, error) {
	cells, err := d.Strings(column)
	if err != nil {
		return "", err
	}
	n := 0
	for _, c := range cells {
		if !isMissing(c) {
			n++
		}
	}
	return strconv.Itoa(n), nil
}

func (d *Dataset) aggregate(verb, column string) (string, error) {
	vals, err := d.Floats(column)
	if err != nil {
		return "", err
	}
	s, err := Describe(vals)
	if err != nil {
		return "", fmt.Errorf("%q: %w", column, err)
	}
	var v float64
	switch verb {
	case "sum":
		v = s.Sum
	case "mean":
		v = s.Mean
	case "median":
		v = s.Q2
	case "min":
		v = s.Min
	case "max":
		v = s.Max
	case "std":
		v = s.Std
	}
	return FormatNumber(v), nil
}

func (d *Dataset) unique(column string) (string, error) {
	cells, err := d.Strings(column)
	if err != nil {
		return "", err
	}
	seen := make(map[string]bool)
	var out []string
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) > maxUniqueValues {
		return fmt.Sprintf("%d unique values, showing the first %d: [%s, ...]",
			len(out), maxUniqueValues, strings.Join(out[:maxUniqueValues], ", ")), nil
	}
	return fmt.Sprintf("%d unique values: [%s]", len(out), strings.Join(out, ", ")), nil
}

func (d *Dataset) valueCounts(column string) (string, error) {
	cells, err := d.Strings(column)
	if err != nil {
		return "", err
	}
	counts := make(map[string]int)
	var order []string
	for _, c := range cells {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	rows := make([][]string, len(order))
	for i, v := range order {
		rows[i] = []string{v, strconv.Itoa(counts[v])}
	}
	return FormatTable([]string{column, "count"}, rows), nil
}

func (d *Dataset) quantile(column, qs string) (string, error) {
	q, err := strconv.ParseFloat(qs, 64)
	if err != nil || q < 0 || q > 1 {
		return "", fmt.Errorf("%w: quantile q must be a number in [0, 1], got %q", ErrBadQuery, qs)
	}
	vals, err := d.Floats(column)
	if err != nil {
		return "", err
	}
	v, err := Quantile(vals, q)
	if err != nil {
		return "", fmt.Errorf("%q: %w", column, err)
	}
	return FormatNumber(v), nil
}

func (d *Dataset) filter(args []string) (string, error) {
	args, limit, err := splitLimit(args)
	if err != nil {
		return "", err
	}
	if len(args) != 3 {
		return "", fmt.Errorf("%w: filter takes <column> <op> <value>", ErrBadQuery)
	}
	column, op, value := args[0], args[1], args[2]

	match, err := d.predicate(column, op, value)
	if err != nil {
		return "", err
	}

	var rows []int
	for i := range d.rows {
		if match(i) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return "No rows match.", nil
	}
	total := len(rows)
	if limit <= 0 {
		limit = defaultMatchRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
		return fmt.Sprintf("%d rows match, showing the first %d.\n%s", total, limit, d.FormatRows(rows)), nil
	}
	return fmt.Sprintf("%d rows match.\n%s", total, d.FormatRows(rows)), nil
}

// predicate compares numerically when both the column and value are numeric,
// otherwise compares text (only == and != are allowed on text).
func (d *Dataset) predicate(column, op, value string) (func(row int) bool, error) {
	ci, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	if target, isNum := ParseNumber(value); isNum && d.IsNumeric(column) {
		var cmp func(a, b float64) bool
		switch op {
		case "==":
			cmp = func(a, b float64) bool { return a == b }
		case "!=":
			cmp = func(a, b float64) bool { return a != b }
		case ">":
			cmp = func(a, b float64) bool { return a > b }
		case ">=":
			cmp = func(a, b float64) bool { return a >= b }
		case "<":
			cmp = func(a, b float64) bool { return a < b }
		case "<=":
			cmp = func(a, b float64) bool { return a <= b }
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", ErrBadQuery, op)
		}
		return func(row int) bool {
			v, ok := ParseNumber(d.rows[row][ci])
			return ok && cmp(v, target)
		}, nil
	}

	switch op {
	case "==":
		return func(row int) bool { return d.rows[row][ci] == value }, nil
	case "!=":
		return func(row int) bool { return d.rows[row][ci] != value }, nil
	}
	return nil, fmt.Errorf("%w: operator %q needs a numeric column and value", ErrBadQuery, op)
}

func (d *Dataset) groupBy(key, agg, column string) (string, error) {
	switch agg {
	case "sum", "mean", "count", "min", "max":
	default:
		return "", fmt.Errorf("%w: unknown aggregate %q", ErrBadQuery, agg)
	}
	keys, err := d.Strings(key)
	if err != nil {
		return "", err
	}
	var (
		vals  []float64
		cells []string
	)
	if agg == "count" {
		if cells, err = d.Strings(column); err != nil {
			return "", err
		}
	} else if vals, err = d.Floats(column); err != nil {
		return "", err
	}

	groups := make(map[string][]float64)
	var order []string
	for i, k := range keys {
		if _, seen := groups[k]; !seen {
			order = append(order, k)
			groups[k] = nil
		}
		if cells != nil {
			// count skips missing cells
			if !isMissing(cells[i]) {
				groups[k] = append(groups[k], 1)
			}
			continue
		}
		groups[k] = append(groups[k], vals[i])
	}
	sort.Strings(order)

	rows := make([][]string, 0, len(order))
	for _, k := range order {
		g := groups[k]
		var v float64
		if agg == "count" {
			v = float64(len(g))
		} else {
			s, err := Describe(g)
			if err != nil {
				rows = append(rows, []string{k, "NaN"})
				continue
			}
			switch agg {
			case "sum":
				v = s.Sum
			case "mean":
				v = s.Mean
			case "min":
				v = s.Min
			case "max":
				v = s.Max
			}
		}
		rows = append(rows, []string{k, FormatNumber(v)})
	}
	return FormatTable([]string{key, agg + "(" + column + ")"}, rows), nil
}

func (d *Dataset) sortBy(args []string) (string, error) {
	args, limit, err := splitLimit(args)
	if err != nil {
		return "", err
	}
	if len(args) == 0 || len(args) > 2 {
		return "", fmt.Errorf("%w: sort takes <column> [asc|desc]", ErrBadQuery)
	}
	column := args[0]
	desc := false
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "asc":
		case "desc":
			desc = true
		default:
			return "", fmt.Errorf("%w: sort order must be asc or desc", ErrBadQuery)
		}
	}

	ci, ok := d.index[column]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	numeric := d.IsNumeric(column)

	rows := make([]int, d.Len())
	for i := range rows {
		rows[i] = i
	}
	less := func(a, b int) bool {
		x, y := d.rows[a][ci], d.rows[b][ci]
		if numeric {
			fx, okx := ParseNumber(x)
			fy, oky := ParseNumber(y)
			if okx && oky {
				return fx < fy
			}
			return okx && !oky
		}
		return x < y
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})

	if limit <= 0 {
		limit = defaultPreviewRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return d.FormatRows(rows), nil
}

// splitLimit strips a trailing "limit n" pair.
func splitLimit(args []string) ([]string, int, error) {
	if len(args) >= 2 && strings.EqualFold(args[len(args)-2], "limit") {
		n, err := strconv.Atoi(args[len(args)-1])
		if err != nil || n <= 0 {
			return nil, 0, fmt.Errorf("%w: limit must be a positive integer", ErrBadQuery)
		}
		return args[:len(args)-2], n, nil
	}
	return args, 0, nil
}

func optionalInt(args []string, pos, def int) (int, error) {
	if len(args) <= pos {
		return def, nil
	}
	n, err := strconv.Atoi(args[pos])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected a non-negative integer, got %q", ErrBadQuery, args[pos])
	}
	return n, nil
}

// tokenize splits on whitespace, keeping quoted ("", '', ``) runs together.
func tokenize(s string) ([]string, error) {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		inTok bool
	)
	for _, r := range strings.TrimSpace(s) {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'' || r == '`':
			quote = r
			inTok = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inTok {
				out = append(out, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrBadQuery)
	}
	if inTok {
		out = append(out, cur.String())
	}
	return out, nil
}
