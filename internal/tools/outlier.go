package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/hassan123789/go-data-analyst/internal/dataset"
)

// OutlierDetector flags rows whose value lies strictly outside the Tukey
// fences [Q1-1.5*IQR, Q3+1.5*IQR] of a numeric column.
type OutlierDetector struct {
	data *dataset.Dataset
}

// NewOutlierDetector creates an outlier detector over a read-only dataset.
func NewOutlierDetector(data *dataset.Dataset) *OutlierDetector {
	return &OutlierDetector{data: data}
}

// Name returns the tool name.
func (o *OutlierDetector) Name() string {
	return "outlier_detector"
}

// Description returns what this tool does.
func (o *OutlierDetector) Description() string {
	return "Detects outliers in a specified column of the dataframe using the IQR method. " +
		"You must pass a valid column name from the dataframe as the input."
}

// Parameters returns the input schema.
func (o *OutlierDetector) Parameters() ParameterSchema {
	return ParameterSchema{
		Properties: []Property{{
			Name:        "data_column",
			Type:        "string",
			Description: "The column to check for outliers, e.g., 'sales' or 'quantity'.",
			Required:    true,
		}},
	}
}

// Execute runs outlier detection on the named column.
func (o *OutlierDetector) Execute(_ context.Context, input string) (Result, error) {
	column := SingleArgument(input, "data_column")

	values, err := o.data.Floats(column)
	if errors.Is(err, dataset.ErrColumnNotFound) {
		return Failuref("Column '%s' not found in the dataframe.", column), nil
	}
	if err != nil {
		return FailureText("An error occurred: %v", err), nil
	}

	bounds, err := dataset.IQRBounds(values)
	if err != nil {
		return FailureText("An error occurred: column '%s': %v", column, err), nil
	}

	var rows []int
	for i, v := range values {
		if bounds.Outside(v) {
			rows = append(rows, i)
		}
	}

	meta := map[string]any{
		"column":   column,
		"q1":       bounds.Q1,
		"q3":       bounds.Q3,
		"iqr":      bounds.IQR,
		"lower":    bounds.Lower,
		"upper":    bounds.Upper,
		"outliers": rows,
	}
	if len(rows) == 0 {
		return SuccessWithMetadata(fmt.Sprintf("No outliers detected in the '%s' column.", column), meta), nil
	}

	out := fmt.Sprintf("Outliers detected in the '%s' column:\n%s", column, o.data.FormatRows(rows))
	return SuccessWithMetadata(out, meta), nil
}
