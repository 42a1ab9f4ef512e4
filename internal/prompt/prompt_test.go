package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analystTools = []Tool{
	{Name: "dataframe_query", Description: "Query the dataset."},
	{Name: "outlier_detector", Description: "Find IQR outliers."},
	{Name: "save_report", Description: "Save a report."},
}

func TestRenderFreshQuestion(t *testing.T) {
	out, err := Render(Data{Tools: analystTools, Question: "What is the total sales?"})
	require.NoError(t, err)

	assert.Contains(t, out, "dataframe_query: Query the dataset.\noutlier_detector: Find IQR outliers.\nsave_report: Save a report.\n")
	assert.Contains(t, out, "should be one of [dataframe_query, outlier_detector, save_report]")
	assert.Contains(t, out, "Question: What is the total sales?\n")
	assert.True(t, strings.HasSuffix(out, "Thought:"), "prompt must end with the thought cue, got %q", out[len(out)-20:])
}

func TestRenderScratchpad(t *testing.T) {
	out, err := Render(Data{
		Tools:    analystTools,
		Question: "Any outliers in sales?",
		Scratchpad: []Exchange{
			{
				Log:         " I should check outliers.\nAction: outlier_detector\nAction Input: sales\n",
				Observation: "No outliers detected in the 'sales' column.",
			},
		},
	})
	require.NoError(t, err)

	want := "Question: Any outliers in sales?\n" +
		"Thought: I should check outliers.\n" +
		"Action: outlier_detector\n" +
		"Action Input: sales\n" +
		"Observation: No outliers detected in the 'sales' column.\n" +
		"Thought:"
	assert.True(t, strings.HasSuffix(out, want), "unexpected tail:\n%s", out)
}

func TestRenderIsDeterministic(t *testing.T) {
	data := Data{Tools: analystTools, Question: "q"}
	a, err := Render(data)
	require.NoError(t, err)
	b, err := Render(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	_, err := Render(Data{Tools: analystTools, Question: "  "})
	assert.Error(t, err)

	_, err = Render(Data{Question: "q"})
	assert.Error(t, err)
}
