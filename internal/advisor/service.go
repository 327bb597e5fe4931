// Package advisor turns a delay prediction into a short traveler advisory
// using an LLM. Advisories are best effort: a failure never affects the
// prediction itself.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/logging"
	"github.com/lalo8115/proyecto-vuelos/internal/pipeline"
)

// Advisory is the generated advice.
type Advisory struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}

// String renders the advisory as plain text.
func (a *Advisory) String() string {
	var b strings.Builder
	b.WriteString(a.Summary)
	for _, t := range a.Tips {
		fmt.Fprintf(&b, "\n  - %s", t)
	}
	return b.String()
}

// Input is one completed prediction.
type Input struct {
	Query  pipeline.Query
	Result *pipeline.Result
}

// Config tunes generation.
type Config struct {
	Language  string        // Default: "Spanish"
	MaxTokens int           // Default: 400
	Timeout   time.Duration // Default: 20s
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "Spanish"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 400
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	return c
}

// Service generates advisories. A nil *Service is valid and disabled.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger

	mu      sync.Mutex
	pending *Advisory
	ready   bool
}

// NewService creates an advisory service.
func NewService(provider llm.Provider, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{provider: provider, cfg: cfg.withDefaults(), log: log}
}

// Enabled reports whether advisories can be generated.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Advise generates an advisory for in.
func (s *Service) Advise(ctx context.Context, in Input) (*Advisory, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("advisor is not configured")
	}
	if in.Result == nil {
		return nil, fmt.Errorf("advisor needs a completed prediction")
	}

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeAdvisory), s.cfg.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Messages:  llm.UserMessage(buildUserMessage(in, s.cfg.Language)),
		Schema:    AdvisorySchema,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate advisory: %w", err)
	}

	var out Advisory
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode advisory: %w", err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	return &out, nil
}

// TryAdvise is Advise for callers that carry on without advice: failures
// are logged and nil is returned.
func (s *Service) TryAdvise(ctx context.Context, in Input) *Advisory {
	if !s.Enabled() {
		return nil
	}
	a, err := s.Advise(ctx, in)
	if err != nil {
		s.log.WarnContext(ctx, "advisory unavailable", logging.Err(err))
		return nil
	}
	return a
}

// RequestAdvice starts generation in the background. A later request
// replaces a pending one.
func (s *Service) RequestAdvice(ctx context.Context, in Input) {
	if !s.Enabled() {
		return
	}
	go func() {
		a := s.TryAdvise(ctx, in)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = a
		s.ready = true
	}()
}

// ConsumeAdvice returns the pending advisory once it is ready. The second
// value is false while generation is still running.
func (s *Service) ConsumeAdvice() (*Advisory, bool) {
	if !s.Enabled() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, false
	}
	a := s.pending
	s.pending = nil
	s.ready = false
	return a, true
}
