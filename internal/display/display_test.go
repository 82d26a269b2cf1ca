package display_test

import (
	"strings"
	"testing"

	"nudge/internal/display"
	"nudge/internal/tasks"
)

func TestBuildEntriesEmptyYieldsPlaceholder(t *testing.T) {
	entries := display.BuildEntries(nil, 5, 30)
	if len(entries) != 1 {
		t.Fatalf("expected single placeholder entry, got %d", len(entries))
	}
	if entries[0].Label != display.PlaceholderLabel {
		t.Fatalf("unexpected placeholder label %q", entries[0].Label)
	}
	if entries[0].Selectable() {
		t.Fatal("placeholder must not be selectable")
	}
}

func TestBuildEntriesTruncatesAndLimits(t *testing.T) {
	pending := []*tasks.Task{
		{ID: 1, Content: strings.Repeat("x", 50)},
		{ID: 2, Content: "short"},
		{ID: 3, Content: "dropped by limit"},
	}
	entries := display.BuildEntries(pending, 2, 10)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Label != strings.Repeat("x", 10)+"..." {
		t.Fatalf("expected truncated label, got %q", entries[0].Label)
	}
	if entries[0].TaskID != 1 || entries[1].TaskID != 2 {
		t.Fatalf("expected ids captured in order, got %d, %d", entries[0].TaskID, entries[1].TaskID)
	}
	if !entries[0].Selectable() {
		t.Fatal("task entries must be selectable")
	}
}

func TestSnapshotReplaceSemantics(t *testing.T) {
	snap := display.NewSnapshot()

	snap.ReplaceEntries([]display.Entry{{Label: "a", TaskID: 1}, {Label: "b", TaskID: 2}})
	snap.ReplaceEntries([]display.Entry{{Label: "c", TaskID: 3}})

	got := snap.Entries()
	if len(got) != 1 || got[0].TaskID != 3 {
		t.Fatalf("expected full replacement, got %+v", got)
	}

	// Mutating the returned slice must not affect the snapshot.
	got[0].Label = "mutated"
	if snap.Entries()[0].Label != "c" {
		t.Fatal("snapshot leaked internal state")
	}
}
