package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/idurar/emily-assistant/agent/contract"
)

func validConfig() Config {
	return Config{
		BaseURL:     "https://openrouter.ai/api/v1",
		APIKey:      "sk-test",
		Model:       "google/gemini-2.0-flash-001",
		Temperature: 0.5,
		Timeout:     30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.APIKey = "   "
	err := cfg.Validate()
	if !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestValidateMissingModel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Model = ""
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestValidateNonPositiveTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Timeout = 0
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOpenRouterCarriesSettings(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.MaxCompletionToken = 1234
	out := cfg.OpenRouter()
	if out.APIKey != "sk-test" || out.Model != cfg.Model {
		t.Fatalf("unexpected conversion: %+v", out)
	}
	if out.MaxCompletionToken == nil || *out.MaxCompletionToken != 1234 {
		t.Fatal("max completion tokens must carry over")
	}
}
