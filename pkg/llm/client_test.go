package llm

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultModelConfig(t *testing.T) {
	cfg := DefaultModelConfig()
	if cfg.Temperature != 0.5 || cfg.TopP != 0.7 || cfg.MaxTokens != 1024 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestNewClient_Providers(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantType string
		wantErr  bool
	}{
		{"default is openai", Options{Model: "m"}, "openai", false},
		{"openai", Options{Provider: ProviderOpenAI, Model: "m", BaseURL: "http://127.0.0.1:8080/v1"}, "openai", false},
		{"ollama", Options{Provider: ProviderOllama, Model: "m", Timeout: time.Second}, "ollama", false},
		{"unknown provider", Options{Provider: "bard", Model: "m"}, "", true},
		{"missing model", Options{Provider: ProviderOpenAI}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			switch tt.wantType {
			case "openai":
				if _, ok := c.(*OpenAIClient); !ok {
					t.Errorf("got %T, want *OpenAIClient", c)
				}
			case "ollama":
				if _, ok := c.(*OllamaClient); !ok {
					t.Errorf("got %T, want *OllamaClient", c)
				}
			}
			if c.Model() != "m" {
				t.Errorf("Model() = %q, want m", c.Model())
			}
		})
	}
}

func fragments(fs ...Fragment) <-chan Fragment {
	ch := make(chan Fragment, len(fs))
	for _, f := range fs {
		ch <- f
	}
	close(ch)
	return ch
}

func TestCollect_ConcatenatesAndSkipsTerminal(t *testing.T) {
	got, err := Collect(fragments(
		Fragment{Content: "resp"},
		Fragment{Content: "onse:"},
		Fragment{Content: "\n  n: 2"},
		Fragment{Done: true, Content: "ignored"},
	))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got != "response:\n  n: 2" {
		t.Errorf("Collect = %q", got)
	}
}

func TestCollect_Error(t *testing.T) {
	boom := errors.New("boom")
	got, err := Collect(fragments(Fragment{Content: "part"}, Fragment{Err: boom}))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got != "part" {
		t.Errorf("partial content = %q, want part", got)
	}
}

func TestWiden(t *testing.T) {
	if got := widen(0.7); got != 0.7 {
		t.Errorf("widen(0.7) = %v", got)
	}
	if got := widen(0.5); got != 0.5 {
		t.Errorf("widen(0.5) = %v", got)
	}
}
