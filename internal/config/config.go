// Package config loads and validates the analyst configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted in the "provider" setting.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderClaude      = "claude"
	ProviderOllama      = "ollama"
)

// Config holds all configuration for the application.
type Config struct {
	// Model settings
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`

	// Files
	DataPath   string `mapstructure:"data_path"`
	ReportPath string `mapstructure:"report_path"`
	PlotPath   string `mapstructure:"plot_path"`

	// Agent settings
	MaxIterations int `mapstructure:"max_iterations"`

	// Visualization bridge
	Visualize        bool          `mapstructure:"visualize"`
	PythonBin        string        `mapstructure:"python_bin"`
	VisualizeTimeout time.Duration `mapstructure:"visualize_timeout"`

	// Application settings
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`
}

// credentialEnv maps a provider to the environment variable holding its key.
var credentialEnv = map[string]string{
	ProviderHuggingFace: "HUGGINGFACEHUB_API_TOKEN",
	ProviderOpenAI:      "OPENAI_API_KEY",
	ProviderClaude:      "ANTHROPIC_API_KEY",
}

// Defaults mirror the layout the analyst expects in its working directory.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderHuggingFace)
	v.SetDefault("api_key", "")
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 1024)
	v.SetDefault("temperature", 0.1)
	v.SetDefault("data_path", "input/sales_data.csv")
	v.SetDefault("report_path", "reports/analysis_report.txt")
	v.SetDefault("plot_path", "reports/visualization.png")
	v.SetDefault("max_iterations", 10)
	v.SetDefault("visualize", false)
	v.SetDefault("python_bin", "python3")
	v.SetDefault("visualize_timeout", 60*time.Second)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "warn")
}

// New returns a viper instance with defaults and environment bindings applied.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ANALYST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, an optional config file, an optional
// .env file in the working directory and the process environment.
// Precedence: flags > env > .env > config file > defaults.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = New()
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.APIKey == "" {
		if key, ok := credentialEnv[c.Provider]; ok {
			c.APIKey = os.Getenv(key)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// loadDotEnv exports the variables of a dotenv file that are not already set
// in the process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	// viper lower-cases keys; environment variables are conventionally upper case.
	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks the enumerated required fields once at startup.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderHuggingFace, ProviderOpenAI, ProviderClaude:
		if c.APIKey == "" {
			return fmt.Errorf("%s is required for provider %q", credentialEnv[c.Provider], c.Provider)
		}
	case ProviderOllama:
	case "":
		return errors.New("provider is required")
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}

	if c.DataPath == "" {
		return errors.New("data_path is required")
	}
	if c.ReportPath == "" {
		return errors.New("report_path is required")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Visualize {
		if c.PlotPath == "" {
			return errors.New("plot_path is required when visualize is enabled")
		}
		if c.PythonBin == "" {
			return errors.New("python_bin is required when visualize is enabled")
		}
	}
	return nil
}

// CredentialEnv returns the environment variable that carries the credential
// for the given provider, or "" when the provider needs none.
func CredentialEnv(provider string) string {
	return credentialEnv[provider]
}
