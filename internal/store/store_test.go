package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/promptg/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, mode, base, enhanced string, at time.Time) internal.GenerationRecord {
	return internal.GenerationRecord{
		ID:             id,
		Mode:           mode,
		Selection:      `{"mode":"` + mode + `"}`,
		BasePrompt:     base,
		EnhancedPrompt: enhanced,
		Model:          "llama3-8b-8192",
		LatencyMs:      120,
		Timestamp:      at,
	}
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_Credential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LoadCredential(ctx); err != nil || ok {
		t.Fatalf("expected no credential, got ok=%v err=%v", ok, err)
	}

	if err := s.SaveCredential(ctx, "gsk_first"); err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}
	if err := s.SaveCredential(ctx, "gsk_second"); err != nil {
		t.Fatalf("SaveCredential (replace) failed: %v", err)
	}

	got, ok, err := s.LoadCredential(ctx)
	if err != nil {
		t.Fatalf("LoadCredential failed: %v", err)
	}
	if !ok || got != "gsk_second" {
		t.Errorf("expected gsk_second, got %q (ok=%v)", got, ok)
	}

	if err := s.ClearCredential(ctx); err != nil {
		t.Fatalf("ClearCredential failed: %v", err)
	}
	if _, ok, _ := s.LoadCredential(ctx); ok {
		t.Error("expected credential removed")
	}
}

func TestStore_Credential_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveCredential(ctx, "gsk_keep"); err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, ok, err := s.LoadCredential(ctx)
	if err != nil || !ok || got != "gsk_keep" {
		t.Errorf("expected persisted credential, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestStore_SaveAndGetGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := record("gen-1", "image", "A high-quality image of a cat", "A fluffy cat", time.Now())
	rec.Advisory = "(Indonesian detected - manual translation may be needed)"

	if err := s.SaveGeneration(ctx, rec); err != nil {
		t.Fatalf("SaveGeneration failed: %v", err)
	}

	got, err := s.GetGeneration(ctx, "gen-1")
	if err != nil {
		t.Fatalf("GetGeneration failed: %v", err)
	}
	if got.BasePrompt != rec.BasePrompt {
		t.Errorf("expected base prompt %q, got %q", rec.BasePrompt, got.BasePrompt)
	}
	if got.EnhancedPrompt != rec.EnhancedPrompt {
		t.Errorf("expected enhanced prompt %q, got %q", rec.EnhancedPrompt, got.EnhancedPrompt)
	}
	if got.Advisory != rec.Advisory {
		t.Errorf("expected advisory %q, got %q", rec.Advisory, got.Advisory)
	}
	if got.Model != "llama3-8b-8192" || got.LatencyMs != 120 {
		t.Errorf("unexpected model/latency: %+v", got)
	}
	if got.Selection != rec.Selection {
		t.Errorf("expected selection %q, got %q", rec.Selection, got.Selection)
	}
}

func TestStore_GetGeneration_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGeneration(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveGeneration_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := record("gen-1", "image", "a", "b", time.Now())
	if err := s.SaveGeneration(ctx, rec); err != nil {
		t.Fatalf("SaveGeneration failed: %v", err)
	}
	if err := s.SaveGeneration(ctx, rec); err == nil {
		t.Error("expected error for duplicate ID")
	}
}

func TestStore_ListGenerations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		rec := record(id, "image", "prompt "+id, "enhanced "+id, base.Add(time.Duration(i)*time.Second))
		if err := s.SaveGeneration(ctx, rec); err != nil {
			t.Fatalf("SaveGeneration(%s) failed: %v", id, err)
		}
	}

	all, err := s.ListGenerations(ctx, 0)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	limited, err := s.ListGenerations(ctx, 2)
	if err != nil {
		t.Fatalf("ListGenerations(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records, got %d", len(limited))
	}
}

func TestStore_ListGenerations_Empty(t *testing.T) {
	s := newTestStore(t)

	all, err := s.ListGenerations(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected an empty, non-nil slice, got %#v", all)
	}
}

func TestStore_SearchGenerations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	recs := []internal.GenerationRecord{
		record("g1", "image", "A high-quality image of a Caf\u00e9 terrace", "Warm evening light", now),
		record("g2", "video", "A cinematic video of a storm", "Lightning over the sea", now.Add(time.Second)),
		record("g3", "image", "A high-quality image of 100% cotton", "Fabric macro", now.Add(2*time.Second)),
	}
	for _, r := range recs {
		if err := s.SaveGeneration(ctx, r); err != nil {
			t.Fatalf("SaveGeneration failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "case insensitive", query: "STORM", wantIDs: []string{"g2"}},
		{name: "matches enhanced text", query: "lightning", wantIDs: []string{"g2"}},
		{name: "decomposed accent matches composed", query: "cafe\u0301", wantIDs: []string{"g1"}},
		{name: "percent is literal", query: "100%", wantIDs: []string{"g3"}},
		{name: "underscore is literal", query: "a_high", wantIDs: nil},
		{name: "shared prefix", query: "high-quality", wantIDs: []string{"g3", "g1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchGenerations(ctx, tt.query, 0)
			if err != nil {
				t.Fatalf("SearchGenerations failed: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestStore_DeleteGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveGeneration(ctx, record("gen-1", "image", "a", "b", time.Now())); err != nil {
		t.Fatalf("SaveGeneration failed: %v", err)
	}

	if err := s.DeleteGeneration(ctx, "gen-1"); err != nil {
		t.Fatalf("DeleteGeneration failed: %v", err)
	}
	if _, err := s.GetGeneration(ctx, "gen-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected record gone, got %v", err)
	}
	if err := s.DeleteGeneration(ctx, "gen-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_ClearAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	flagged := record("g2", "video", "b", "b+", now.Add(time.Second))
	flagged.Advisory = "(Indonesian detected - manual translation may be needed)"

	for _, r := range []internal.GenerationRecord{
		record("g1", "image", "a", "a+", now),
		flagged,
		record("g3", "video", "c", "c+", now.Add(2*time.Second)),
	} {
		if err := s.SaveGeneration(ctx, r); err != nil {
			t.Fatalf("SaveGeneration failed: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Images != 1 || stats.Videos != 2 || stats.NonEnglish != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	n, err := s.ClearGenerations(ctx)
	if err != nil {
		t.Fatalf("ClearGenerations failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows cleared, got %d", n)
	}

	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("expected empty history, got %+v", stats)
	}
}

func TestSearchKey(t *testing.T) {
	if searchKey("  Cafe\u0301 ") != searchKey("caf\u00e9") {
		t.Error("expected NFC + case folding to equate composed and decomposed forms")
	}
}

func TestSQLLimit(t *testing.T) {
	if sqlLimit(0) != -1 || sqlLimit(-5) != -1 {
		t.Error("expected non-positive limits to be unbounded")
	}
	if sqlLimit(7) != 7 {
		t.Error("expected positive limit unchanged")
	}
}
