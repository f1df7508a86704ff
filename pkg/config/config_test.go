package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andrew/llm-movie-rec/pkg/llm"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvProvider, EnvModel, EnvBaseURL, EnvAPIKey, EnvOpenAIKey, EnvTimeout,
		EnvLogLevel, EnvLogPretty, EnvMetrics, EnvDataDir, EnvListenAddr,
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movierec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != llm.ProviderOpenAI {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.BaseURL != "http://127.0.0.1:8080/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Model != "Meta-Llama-3-8B-Instruct-8.0bpw-exl2" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
provider: ollama
model: llama3
base_url: http://localhost:11434
timeout: 90s
log_pretty: true
metrics_enabled: true
data_dir: /data/ml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.Provider = llm.ProviderOllama
	want.Model = "llama3"
	want.BaseURL = "http://localhost:11434"
	want.Timeout = 90 * time.Second
	want.LogPretty = true
	want.MetricsEnabled = true
	want.DataDir = "/data/ml"
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "model: from-file\ntimeout: 1m\nlog_pretty: true\n")
	t.Setenv(EnvModel, "from-env")
	t.Setenv(EnvTimeout, "2m")
	t.Setenv(EnvLogPretty, "false")
	t.Setenv(EnvListenAddr, ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-env" || cfg.Timeout != 2*time.Minute || cfg.LogPretty || cfg.ListenAddr != ":9090" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "model: [unterminated\n"},
		{name: "bad file timeout", file: "timeout: soon\n"},
		{name: "bad env timeout", env: map[string]string{EnvTimeout: "soon"}},
		{name: "bad env bool", env: map[string]string{EnvMetrics: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestApplyEnv_APIKey(t *testing.T) {
	tests := []struct {
		name    string
		fileKey string
		env     map[string]string
		want    string
	}{
		{"none", "", nil, ""},
		{"openai fallback", "", map[string]string{EnvOpenAIKey: "sk-openai"}, "sk-openai"},
		{"own variable wins", "", map[string]string{EnvOpenAIKey: "sk-openai", EnvAPIKey: "sk-own"}, "sk-own"},
		{"file beats fallback", "sk-file", map[string]string{EnvOpenAIKey: "sk-openai"}, "sk-file"},
		{"own variable beats file", "sk-file", map[string]string{EnvAPIKey: "sk-own"}, "sk-own"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := Default()
			cfg.APIKey = tt.fileKey
			if err := cfg.ApplyEnv(); err != nil {
				t.Fatalf("ApplyEnv: %v", err)
			}
			if cfg.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.APIKey, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ollama", func(c *Config) { c.Provider = llm.ProviderOllama }, ""},
		{"unknown provider", func(c *Config) { c.Provider = "bedrock" }, "unknown provider"},
		{"empty provider", func(c *Config) { c.Provider = "" }, "unknown provider"},
		{"empty model", func(c *Config) { c.Model = "" }, "model"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "sk-test"
	opts := cfg.ClientOptions()
	if opts.Provider != cfg.Provider || opts.Model != cfg.Model || opts.BaseURL != cfg.BaseURL ||
		opts.APIKey != "sk-test" || opts.Timeout != cfg.Timeout {
		t.Errorf("ClientOptions() = %+v", opts)
	}
}
