// Package config resolves runtime settings from built-in defaults, an optional
// YAML file and the environment, in that order of precedence. Command line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/andrew/llm-movie-rec/pkg/llm"
)

const (
	DefaultProvider   = llm.ProviderOpenAI
	DefaultBaseURL    = "http://127.0.0.1:8080/v1"
	DefaultModel      = "Meta-Llama-3-8B-Instruct-8.0bpw-exl2"
	DefaultTimeout    = 5 * time.Minute
	DefaultLogLevel   = "info"
	DefaultListenAddr = ":8080"
	DefaultDataDir    = "ml-latest-small"
)

// Environment variables read by Load
const (
	EnvProvider   = "MOVIEREC_PROVIDER"
	EnvModel      = "MOVIEREC_MODEL"
	EnvBaseURL    = "MOVIEREC_BASE_URL"
	EnvAPIKey     = "MOVIEREC_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvTimeout    = "MOVIEREC_TIMEOUT"
	EnvLogLevel   = "MOVIEREC_LOG_LEVEL"
	EnvLogPretty  = "MOVIEREC_LOG_PRETTY"
	EnvMetrics    = "MOVIEREC_METRICS"
	EnvDataDir    = "MOVIEREC_DATA_DIR"
	EnvListenAddr = "MOVIEREC_LISTEN_ADDR"
)

// Config holds everything needed to build a client and run a command
type Config struct {
	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	LogLevel       string
	LogPretty      bool
	MetricsEnabled bool
	ListenAddr     string
	DataDir        string
}

// fileConfig mirrors Config as written in YAML. Unset keys keep the lower
// precedence value.
type fileConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Timeout        string `yaml:"timeout"`
	LogLevel       string `yaml:"log_level"`
	LogPretty      *bool  `yaml:"log_pretty"`
	MetricsEnabled *bool  `yaml:"metrics_enabled"`
	ListenAddr     string `yaml:"listen_addr"`
	DataDir        string `yaml:"data_dir"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Provider:   DefaultProvider,
		Model:      DefaultModel,
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		LogLevel:   DefaultLogLevel,
		ListenAddr: DefaultListenAddr,
		DataDir:    DefaultDataDir,
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty), a .env file in the working directory if there is one, and
// the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.Provider, f.Provider)
	setString(&c.Model, f.Model)
	setString(&c.BaseURL, f.BaseURL)
	setString(&c.APIKey, f.APIKey)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.ListenAddr, f.ListenAddr)
	setString(&c.DataDir, f.DataDir)
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("parsing config file %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if f.LogPretty != nil {
		c.LogPretty = *f.LogPretty
	}
	if f.MetricsEnabled != nil {
		c.MetricsEnabled = *f.MetricsEnabled
	}
	return nil
}

// ApplyEnv overrides c with any MOVIEREC_* variables that are set.
// OPENAI_API_KEY is used when MOVIEREC_API_KEY is not.
func (c *Config) ApplyEnv() error {
	setString(&c.Provider, os.Getenv(EnvProvider))
	setString(&c.Model, os.Getenv(EnvModel))
	setString(&c.BaseURL, os.Getenv(EnvBaseURL))
	setString(&c.LogLevel, os.Getenv(EnvLogLevel))
	setString(&c.ListenAddr, os.Getenv(EnvListenAddr))
	setString(&c.DataDir, os.Getenv(EnvDataDir))

	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	} else if key := os.Getenv(EnvOpenAIKey); key != "" && c.APIKey == "" {
		c.APIKey = key
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if err := setBool(&c.LogPretty, EnvLogPretty); err != nil {
		return err
	}
	return setBool(&c.MetricsEnabled, EnvMetrics)
}

// Validate reports settings no client could be built from
func (c Config) Validate() error {
	switch c.Provider {
	case llm.ProviderOpenAI, llm.ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, llm.ProviderOpenAI, llm.ProviderOllama)
	}
	if c.Model == "" {
		return errors.New("model name is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ClientOptions returns the settings NewClient needs
func (c Config) ClientOptions() llm.Options {
	return llm.Options{
		Provider: c.Provider,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
		Timeout:  c.Timeout,
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*dst = b
	return nil
}
