package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReport_RoundTripAndOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "analysis_report.txt")
	tool := NewSaveReport(path)

	first := "Sales peaked in Q3.\nRégion Nord: +12% ✓"
	res, err := tool.Execute(context.Background(), first)
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.String())
	assert.Contains(t, res.String(), "Successfully saved the report")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, string(got))

	second := "short"
	res, err = tool.Execute(context.Background(), second)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, second, string(got), "second save must replace, not append")
}

func TestSaveReport_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// A regular file cannot be used as a parent directory.
	tool := NewSaveReport(filepath.Join(blocker, "report.txt"))
	res, err := tool.Execute(context.Background(), "content")
	require.NoError(t, err)

	assert.False(t, res.IsSuccess())
	assert.True(t, strings.HasPrefix(res.String(), "Failed to save report. Error: "), res.String())
}
