package tools

import "github.com/hassan123789/go-data-analyst/internal/dataset"

// NewAnalystRegistry builds the analyst tool set over a dataset.
func NewAnalystRegistry(data *dataset.Dataset, reportPath string) *Registry {
	r := NewRegistry()
	r.MustRegister(NewDataFrameQuery(data))
	r.MustRegister(NewOutlierDetector(data))
	r.MustRegister(NewSaveReport(reportPath))
	return r
}
