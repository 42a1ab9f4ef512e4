package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into an empty directory so no stray .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "hf_test")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ProviderHuggingFace, cfg.Provider)
	assert.Equal(t, "hf_test", cfg.APIKey)
	assert.Equal(t, "input/sales_data.csv", cfg.DataPath)
	assert.Equal(t, "reports/analysis_report.txt", cfg.ReportPath)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.False(t, cfg.Visualize)
}

func TestLoad_MissingCredential(t *testing.T) {
	chdir(t)
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "")

	_, err := Load(New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUGGINGFACEHUB_API_TOKEN")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("ANALYST_PROVIDER", "ollama")
	t.Setenv("ANALYST_MAX_ITERATIONS", "4")
	t.Setenv("ANALYST_DATA_PATH", "data.csv")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, 4, cfg.MaxIterations)
	assert.Equal(t, "data.csv", cfg.DataPath)
	assert.Empty(t, cfg.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	t.Setenv("ANALYST_PROVIDER", "openai")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-from-dotenv\n"), 0o600))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", cfg.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "analyst.yaml")
	content := "provider: claude\napi_key: sk-ant\nmax_iterations: 3\nreport_path: out/r.txt\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.Equal(t, "out/r.txt", cfg.ReportPath)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Provider:      ProviderOllama,
			DataPath:      "d.csv",
			ReportPath:    "r.txt",
			PlotPath:      "p.png",
			PythonBin:     "python3",
			MaxIterations: 10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty provider", mutate: func(c *Config) { c.Provider = "" }, wantErr: "provider is required"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "bard" }, wantErr: "unsupported provider"},
		{name: "openai without key", mutate: func(c *Config) { c.Provider = ProviderOpenAI }, wantErr: "OPENAI_API_KEY"},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, wantErr: "max_iterations"},
		{name: "no data path", mutate: func(c *Config) { c.DataPath = "" }, wantErr: "data_path"},
		{name: "visualize without python", mutate: func(c *Config) { c.Visualize = true; c.PythonBin = "" }, wantErr: "python_bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
