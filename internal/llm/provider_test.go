package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

func advisorySchema() *Schema {
	return &Schema{
		Name:        "test-advisory",
		Description: "Traveler advisory",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
				"tips": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"maxItems": 3,
				},
			},
			"required":             []string{"summary", "tips"},
			"additionalProperties": false,
		},
	}
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"summary":"a","tips":[]}`)},
		MockResponse{Content: json.RawMessage(`{"summary":"b","tips":[]}`)},
	)

	for _, want := range []string{`{"summary":"a","tips":[]}`, `{"summary":"b","tips":[]}`} {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Content) != want {
			t.Fatalf("got %s, want %s", resp.Content, want)
		}
	}

	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable on empty queue, got: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeAdvisory)
	if p := PurposeFrom(ctx); p != PurposeAdvisory {
		t.Fatalf("expected 'advisory', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"none", Config{Provider: "none"}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", APIKey: "sk-test"}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown", APIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := Discover(DefaultConfig()); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := Discover(DefaultConfig())
	if !ok || cfg.Provider != "openai" || cfg.APIKey != "sk-oai" {
		t.Fatalf("expected openai to win, got %+v", cfg)
	}

	explicit := Config{Provider: "mock"}
	cfg, ok = Discover(explicit)
	if !ok || cfg.Provider != "mock" {
		t.Fatalf("explicit provider should be kept, got %+v", cfg)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected error for disabled provider")
	}
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"summary":"ok","tips":[]}`), Usage: Usage{InputTokens: 12, OutputTokens: 8}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, s.EventRepo(), logging.Discard())
	ctx := WithPurpose(context.Background(), PurposeAdvisory)

	req := Request{System: "sys", Messages: UserMessage("hello"), Schema: advisorySchema()}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error from second call")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	failed, succeeded := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("newest event should be the failure: %+v", failed)
	}
	if !succeeded.Success || succeeded.InputTokens != 12 || succeeded.Purpose != "advisory" || succeeded.Provider != "mock" {
		t.Fatalf("unexpected success event: %+v", succeeded)
	}
	if succeeded.ResponseBody != `{"summary":"ok","tips":[]}` {
		t.Fatalf("response body = %q", succeeded.ResponseBody)
	}
}

func TestSerializeRequest(t *testing.T) {
	got := serializeRequest(Request{System: "sys", Messages: UserMessage("hi"), Schema: advisorySchema()})
	for _, want := range []string{"[system]\nsys", "[user]\nhi", "[schema: test-advisory]"} {
		if !strings.Contains(got, want) {
			t.Errorf("serialized request missing %q:\n%s", want, got)
		}
	}
}
