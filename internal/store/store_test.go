package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vuelos.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	for _, table := range []string{"predictions", "llm_requests", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vuelos.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	p := &Prediction{Flight: "AA100", Origin: "JFK", Destination: "LAX", Date: "2024-03-15", Time: "10:00"}
	if err := s.PredictionRepo().Append(ctx, p); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.PredictionRepo().Get(ctx, p.ID); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestPredictionAppendAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.PredictionRepo()
	ctx := context.Background()

	p := &Prediction{
		Source:      "cli",
		Flight:      "AA100",
		Origin:      "JFK",
		Destination: "LAX",
		Date:        "2024-03-15",
		Time:        "10:00",
		Month:       3,
		Weekday:     4,
		Hour:        10,
		Probability: 0.73,
		Band:        "HIGH",
		Unmatched:   []string{"PortTo_ZZZ"},
	}
	if err := repo.Append(ctx, p); err != nil {
		t.Fatalf("append: %v", err)
	}
	if p.ID == "" || p.Sequence == 0 || p.CreatedAt.IsZero() {
		t.Fatalf("append did not assign identity: %+v", p)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Flight != "AA100" || got.Band != "HIGH" || got.Hour != 10 {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.Probability != 0.73 {
		t.Errorf("probability = %v, want 0.73", got.Probability)
	}
	if len(got.Unmatched) != 1 || got.Unmatched[0] != "PortTo_ZZZ" {
		t.Errorf("unmatched = %v", got.Unmatched)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestPredictionGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.PredictionRepo().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPredictionListAndFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.PredictionRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bands := []string{"LOW", "HIGH", "MEDIUM", "HIGH"}
	for i, b := range bands {
		err := repo.Append(ctx, &Prediction{
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Flight:    "F" + b,
			Band:      b,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := repo.Append(ctx, &Prediction{CreatedAt: base.Add(5 * time.Hour), Error: "model down"}); err != nil {
		t.Fatalf("append failure: %v", err)
	}

	all, err := repo.List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Sequence <= all[i].Sequence {
			t.Fatalf("list not newest first: %d then %d", all[i-1].Sequence, all[i].Sequence)
		}
	}

	limited, err := repo.List(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: len = %d, want 2", len(limited))
	}

	high, err := repo.List(ctx, QueryOpts{Band: "HIGH"})
	if err != nil {
		t.Fatalf("list band: %v", err)
	}
	if len(high) != 2 {
		t.Errorf("band filter: len = %d, want 2", len(high))
	}

	window, err := repo.List(ctx, QueryOpts{From: base.Add(time.Hour), To: base.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(window) != 2 {
		t.Errorf("time window: len = %d, want 2", len(window))
	}

	after, err := repo.List(ctx, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("after: len = %d, want 1", len(after))
	}
}

func TestPredictionCountByBand(t *testing.T) {
	s := openTestStore(t)
	repo := s.PredictionRepo()
	ctx := context.Background()

	for _, b := range []string{"LOW", "LOW", "HIGH"} {
		if err := repo.Append(ctx, &Prediction{Band: b}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := repo.Append(ctx, &Prediction{Error: "timeout"}); err != nil {
		t.Fatalf("append failure: %v", err)
	}

	counts, err := repo.CountByBand(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["LOW"] != 2 || counts["HIGH"] != 1 || counts["MEDIUM"] != 0 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts[""]; ok {
		t.Errorf("failed predictions should not be counted: %v", counts)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, ok := range []bool{true, false} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock",
			Purpose:      "advisory",
			InputTokens:  10 * (i + 1),
			LatencyMs:    5,
			Success:      ok,
			RequestBody:  `{"prompt":"x"}`,
			ResponseBody: `{"summary":"y"}`,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Success || events[0].InputTokens != 20 {
		t.Errorf("newest event = %+v", events[0])
	}
	if events[1].RequestBody != `{"prompt":"x"}` {
		t.Errorf("request body = %q", events[1].RequestBody)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &Prediction{Band: "LOW"}
	if err := s.PredictionRepo().Append(ctx, p); err != nil {
		t.Fatalf("append prediction: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock"}); err != nil {
		t.Fatalf("append event: %v", err)
	}
	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if events[0].Sequence != p.Sequence+1 {
		t.Errorf("event sequence = %d, want %d", events[0].Sequence, p.Sequence+1)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("VUELOS_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("env path: %v", err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("VUELOS_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("xdg path: %v", err)
	}
	if p != filepath.Join(dir, "vuelos", "vuelos.db") {
		t.Errorf("path = %q", p)
	}
}
