package queue

import (
	"testing"

	"mailroom/internal/classify"
)

func TestAddPreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	first := store.NewLocalItem("/mail/a.pdf", "a.pdf", "application/pdf")
	second := store.NewRemoteItem("remote-1", "b.pdf", "application/pdf")
	third := store.NewLocalItem("/mail/c.jpg", "c.jpg", "image/jpeg")

	items := store.List()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for pos, want := range []string{first.ID, second.ID, third.ID} {
		if items[pos].ID != want {
			t.Fatalf("position %d holds %s, want %s", pos, items[pos].ID, want)
		}
	}
	for _, item := range items {
		if item.Status != StatusPending {
			t.Fatalf("new item status = %q", item.Status)
		}
	}
}

func TestNextPendingIsFIFO(t *testing.T) {
	store := NewStore()
	first := store.NewLocalItem("/mail/a.pdf", "a.pdf", "")
	store.NewLocalItem("/mail/b.pdf", "b.pdf", "")

	next, ok := store.NextPending()
	if !ok || next.ID != first.ID {
		t.Fatalf("NextPending = %v %v, want first item", next.ID, ok)
	}

	// Terminal items are skipped.
	next.SetFailed("boom")
	if err := store.Update(next); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	again, ok := store.NextPending()
	if !ok || again.DisplayName != "b.pdf" {
		t.Fatalf("expected second item next, got %v %v", again.DisplayName, ok)
	}
}

func TestUpdateReplacesWholeItem(t *testing.T) {
	store := NewStore()
	item := store.NewLocalItem("/mail/a.pdf", "a.pdf", "")

	item.SetAnalyzing("Preparing…")
	if err := store.Update(item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, ok := store.Get(item.ID)
	if !ok {
		t.Fatal("item vanished")
	}
	if stored.Status != StatusAnalyzing || stored.StatusMessage != "Preparing…" {
		t.Fatalf("update not applied: %+v", stored)
	}

	// The copy handed out must not alias store state.
	stored.StatusMessage = "mutated locally"
	fresh, _ := store.Get(item.ID)
	if fresh.StatusMessage != "Preparing…" {
		t.Fatal("store state mutated through a reader copy")
	}
}

func TestUpdateUnknownItem(t *testing.T) {
	store := NewStore()
	err := store.Update(Item{ID: "ghost"})
	if err == nil {
		t.Fatal("expected error for unknown item")
	}
}

func TestSetResultsAnyUndeterminedTaintsItem(t *testing.T) {
	item := Item{}
	item.SetResults([]AnalysisResult{
		{Classification: classify.ForwardAyr},
		{Classification: classify.Undetermined},
	})
	if item.Status != StatusReview {
		t.Fatalf("status = %q, want review", item.Status)
	}

	clean := Item{}
	clean.SetResults([]AnalysisResult{{Classification: classify.Shred}})
	if clean.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", clean.Status)
	}
}

func TestResultErrorExclusivity(t *testing.T) {
	item := Item{}
	item.SetResults([]AnalysisResult{{Classification: classify.DigitalStore}})
	if item.ErrorMessage != "" {
		t.Fatal("results and error must be mutually exclusive")
	}
	item.SetFailed("extraction exploded")
	if item.Results != nil || item.StatusMessage != "" {
		t.Fatal("failed item must clear results and progress message")
	}
	if item.ErrorMessage != "extraction exploded" {
		t.Fatalf("error = %q", item.ErrorMessage)
	}
}

func TestRetryFailed(t *testing.T) {
	store := NewStore()
	a := store.NewLocalItem("/mail/a.pdf", "a.pdf", "")
	b := store.NewLocalItem("/mail/b.pdf", "b.pdf", "")

	a.SetFailed("x")
	b.SetFailed("y")
	_ = store.Update(a)
	_ = store.Update(b)

	if count := store.RetryFailed(a.ID); count != 1 {
		t.Fatalf("RetryFailed(one) = %d", count)
	}
	refreshed, _ := store.Get(a.ID)
	if refreshed.Status != StatusPending || refreshed.ErrorMessage != "" {
		t.Fatalf("retry did not reset item: %+v", refreshed)
	}

	if count := store.RetryFailed(); count != 1 {
		t.Fatalf("RetryFailed(all) = %d", count)
	}
	if stats := store.Stats(); stats.Failed != 0 || stats.Pending != 2 {
		t.Fatalf("unexpected stats after retry: %+v", stats)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := NewStore()
	a := store.NewLocalItem("/mail/a.pdf", "a.pdf", "")
	store.NewLocalItem("/mail/b.pdf", "b.pdf", "")

	if err := store.Remove(a.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := store.Get(a.ID); ok {
		t.Fatal("removed item still present")
	}
	if items := store.List(); len(items) != 1 || items[0].DisplayName != "b.pdf" {
		t.Fatalf("unexpected remainder: %+v", items)
	}

	if count := store.Clear(); count != 1 {
		t.Fatalf("Clear = %d", count)
	}
	if stats := store.Stats(); stats.Total != 0 {
		t.Fatalf("store not empty after clear: %+v", stats)
	}
}

func TestNaturalKeys(t *testing.T) {
	store := NewStore()
	store.NewLocalItem("/mail/a.pdf", "a.pdf", "")
	store.NewRemoteItem("remote-9", "b.pdf", "")

	keys := store.NaturalKeys()
	if _, ok := keys["a.pdf"]; !ok {
		t.Fatal("local natural key missing")
	}
	if _, ok := keys["remote-9"]; !ok {
		t.Fatal("remote natural key missing")
	}
	if _, ok := keys["b.pdf"]; ok {
		t.Fatal("remote item must key on remote ID, not display name")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Pending "); !ok || status != StatusPending {
		t.Fatalf("ParseStatus = %q %v", status, ok)
	}
	if _, ok := ParseStatus("nonsense"); ok {
		t.Fatal("unknown status accepted")
	}
}

func TestTerminal(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusPending:   false,
		StatusAnalyzing: false,
		StatusCompleted: true,
		StatusReview:    true,
		StatusFailed:    true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
