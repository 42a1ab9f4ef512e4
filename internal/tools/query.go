package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hassan123789/go-data-analyst/internal/dataset"
)

// DataFrameQuery answers ad-hoc questions about the dataset through the
// dataset query language.
type DataFrameQuery struct {
	data *dataset.Dataset
}

// NewDataFrameQuery creates a query tool over a read-only dataset.
func NewDataFrameQuery(data *dataset.Dataset) *DataFrameQuery {
	return &DataFrameQuery{data: data}
}

// Name returns the tool name.
func (q *DataFrameQuery) Name() string {
	return "dataframe_query"
}

// Description returns what this tool does, including the column list.
func (q *DataFrameQuery) Description() string {
	return fmt.Sprintf(
		"Runs one query command against the loaded dataframe (%d rows, columns: %s). Commands: %s",
		q.data.Len(), strings.Join(q.data.Columns(), ", "), strings.ReplaceAll(dataset.QueryHelp, "\n", " "),
	)
}

// Parameters returns the input schema.
func (q *DataFrameQuery) Parameters() ParameterSchema {
	return ParameterSchema{
		Properties: []Property{{
			Name:        "query",
			Type:        "string",
			Description: "A single query command, e.g. 'mean sales' or 'groupby region sum sales'.",
			Required:    true,
		}},
	}
}

// Execute evaluates the query.
func (q *DataFrameQuery) Execute(_ context.Context, input string) (Result, error) {
	query := SingleArgument(input, "query")
	if query == "" {
		return Failure("query cannot be empty. Available commands: " + dataset.QueryHelp), nil
	}

	out, err := q.data.Query(query)
	switch {
	case err == nil:
		return Success(out), nil
	case errors.Is(err, dataset.ErrBadQuery):
		return Failuref("%v. Available commands: %s", err, dataset.QueryHelp), nil
	default:
		return Failure(err.Error()), nil
	}
}
