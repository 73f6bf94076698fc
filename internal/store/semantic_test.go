package store

import (
	"math"
	"testing"
)

func TestUpsertFactInsert(t *testing.T) {
	db := testDB(t)

	created, err := db.UpsertFact("sess-001", "User", "Prefers", "dark mode")
	if err != nil {
		t.Fatalf("UpsertFact: %v", err)
	}
	if !created {
		t.Error("expected a new row")
	}

	m, err := db.FindTriple("sess-001", "User", "Prefers", "dark mode")
	if err != nil {
		t.Fatalf("FindTriple: %v", err)
	}
	if m == nil {
		t.Fatal("expected row, got nil")
	}
	if m.Confidence != 0.5 {
		t.Errorf("confidence = %f, want 0.5", m.Confidence)
	}
	if m.Importance != 0.5 {
		t.Errorf("importance = %f, want 0.5", m.Importance)
	}
	if m.AccessCount != 1 {
		t.Errorf("access_count = %d, want 1", m.AccessCount)
	}
}

func TestUpsertFactRematch(t *testing.T) {
	db := testDB(t)

	db.UpsertFact("sess-001", "User", "Prefers", "dark mode")
	created, err := db.UpsertFact("sess-001", "User", "Prefers", "dark mode")
	if err != nil {
		t.Fatalf("UpsertFact: %v", err)
	}
	if created {
		t.Error("expected rematch, not a new row")
	}

	rows, _ := db.ListSemantic("sess-001")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if math.Abs(rows[0].Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %f, want 0.6", rows[0].Confidence)
	}
	if rows[0].AccessCount != 2 {
		t.Errorf("access_count = %d, want 2", rows[0].AccessCount)
	}
}

func TestUpsertFactConfidenceCap(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 8; i++ {
		if _, err := db.UpsertFact("sess-001", "User", "Uses", "Go"); err != nil {
			t.Fatalf("UpsertFact: %v", err)
		}
	}

	rows, _ := db.ListSemantic("sess-001")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Confidence != 1.0 {
		t.Errorf("confidence = %f, want capped 1.0", rows[0].Confidence)
	}
}

func TestUpsertFactNormalizedDedup(t *testing.T) {
	db := testDB(t)

	db.UpsertFact("sess-001", "User", "Uses", "Python")
	created, err := db.UpsertFact("sess-001", "User", "Uses", " python ")
	if err != nil {
		t.Fatalf("UpsertFact: %v", err)
	}
	if created {
		t.Error("case/whitespace variant should land on the existing row")
	}

	rows, _ := db.ListSemantic("sess-001")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	// Original casing preserved for display
	if rows[0].Target != "Python" {
		t.Errorf("target = %q, want original %q", rows[0].Target, "Python")
	}
}

func TestUpsertFactSessionScoped(t *testing.T) {
	db := testDB(t)

	db.UpsertFact("sess-001", "User", "Prefers", "tea")
	created, _ := db.UpsertFact("sess-002", "User", "Prefers", "tea")
	if !created {
		t.Error("same triple in a different session should be a new row")
	}
}

func TestTouchSemantic(t *testing.T) {
	db := testDB(t)

	db.UpsertFact("sess-001", "User", "Prefers", "tea")
	rows, _ := db.ListSemantic("sess-001")

	if err := db.TouchSemantic([]int64{rows[0].ID}); err != nil {
		t.Fatalf("TouchSemantic: %v", err)
	}

	rows, _ = db.ListSemantic("sess-001")
	if rows[0].AccessCount != 2 {
		t.Errorf("access_count = %d, want 2", rows[0].AccessCount)
	}
	if rows[0].LastAccessed == "" {
		t.Error("expected last_accessed to be set")
	}

	// Empty id set is a no-op
	if err := db.TouchSemantic(nil); err != nil {
		t.Fatalf("TouchSemantic(nil): %v", err)
	}
}

func TestReinforceSemantic(t *testing.T) {
	db := testDB(t)

	db.UpsertFact("sess-001", "User", "Prefers", "tea")
	rows, _ := db.ListSemantic("sess-001")

	if err := db.ReinforceSemantic(rows[0].ID); err != nil {
		t.Fatalf("ReinforceSemantic: %v", err)
	}

	after, _ := db.ListSemantic("sess-001")
	if math.Abs(after[0].Importance-0.55) > 1e-9 {
		t.Errorf("importance = %f, want 0.55", after[0].Importance)
	}
	if after[0].AccessCount != rows[0].AccessCount+1 {
		t.Errorf("access_count = %d, want %d", after[0].AccessCount, rows[0].AccessCount+1)
	}

	if err := db.ReinforceSemantic(9999); err == nil {
		t.Error("expected error for unknown id")
	}
}
