package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/specgen/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "specgen.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveRunAssignsIDAndRoundTrips(t *testing.T) {
	s := newTestStore(t)

	run := &types.RunRecord{
		Target:           "./api",
		OutputPath:       "openapi.yaml",
		BaseURL:          "http://localhost:3000",
		Model:            "gpt-4o-mini",
		FileCount:        3,
		PromptTokens:     120,
		CompletionTokens: 30,
		TotalTokens:      150,
		Cost:             0.000036,
		Status:           "ok",
		Document:         "openapi: 3.0.3",
	}
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("expected an assigned run id")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("expected an assigned timestamp")
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Target != run.Target || got.Status != "ok" || got.TotalTokens != 150 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Document != "openapi: 3.0.3" {
		t.Fatalf("document mismatch: %q", got.Document)
	}
}

func TestSaveRunOverwritesExistingID(t *testing.T) {
	s := newTestStore(t)

	run := &types.RunRecord{ID: "fixed", Target: ".", OutputPath: "o.yaml", BaseURL: "http://x", Model: "m", Status: "failed", ErrorMsg: "boom"}
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	run.Status = "ok"
	run.ErrorMsg = ""
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRun("fixed")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || got.ErrorMsg != "" {
		t.Fatalf("overwrite failed: %+v", got)
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &types.RunRecord{
			ID:         fmt.Sprintf("run-%d", i),
			Target:     "./api",
			OutputPath: "openapi.yaml",
			BaseURL:    "http://localhost:3000",
			Model:      "gpt-4o-mini",
			Status:     "ok",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}

	all, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
}

func TestGetRunMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRun("nope"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestClearRuns(t *testing.T) {
	s := newTestStore(t)

	_ = s.SaveRun(&types.RunRecord{Target: ".", OutputPath: "o.yaml", BaseURL: "http://x", Model: "m", Status: "failed", ErrorMsg: "boom"})
	if err := s.ClearRuns(); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

func TestConcurrentSaveAndList(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SaveRun(&types.RunRecord{Target: fmt.Sprintf("./t%d", i), OutputPath: "o.yaml", BaseURL: "http://x", Model: "m", Status: "ok"})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.ListRuns(0)
		}()
	}
	wg.Wait()

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) == 0 {
		t.Fatal("expected saved runs")
	}
}
