package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/store"
)

func newFileBank(t *testing.T) *store.Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	return store.NewBank(logger.New(), store.NewFilePersister(path))
}

// TestAdd_AssignsUniqueIDs tests that every added question gets a fresh id
func TestAdd_AssignsUniqueIDs(t *testing.T) {
	bank := newFileBank(t)
	ctx := context.Background()

	options := []string{"red", "green", "blue"}
	q1, err := bank.Add(ctx, "What color is the sky?", options, 2, "", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	q2, err := bank.Add(ctx, "What color is grass?", options, 1, "", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if q1.ID == "" || q2.ID == "" {
		t.Error("expected non-empty question ids")
	}
	if q1.ID == q2.ID {
		t.Errorf("expected unique ids, both were %q", q1.ID)
	}
}

// TestAdd_Validation tests rejection of malformed question input
func TestAdd_Validation(t *testing.T) {
	bank := newFileBank(t)
	ctx := context.Background()

	cases := []struct {
		name         string
		text         string
		options      []string
		correctIndex int
	}{
		{"empty text", "   ", []string{"a", "b", "c"}, 0},
		{"two options", "q?", []string{"a", "b"}, 0},
		{"four options", "q?", []string{"a", "b", "c", "d"}, 0},
		{"blank option", "q?", []string{"a", " ", "c"}, 0},
		{"index too low", "q?", []string{"a", "b", "c"}, -1},
		{"index too high", "q?", []string{"a", "b", "c"}, 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := bank.Add(ctx, c.text, c.options, c.correctIndex, "", ""); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	if bank.Count() != 0 {
		t.Errorf("rejected adds must not grow the bank, count = %d", bank.Count())
	}
}

// TestAddRemoveList tests that add/remove are reflected in List
func TestAddRemoveList(t *testing.T) {
	bank := newFileBank(t)
	ctx := context.Background()

	q, err := bank.Add(ctx, "Capital of Peru?", []string{"Lima", "Quito", "Bogota"}, 0, "geography", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list := bank.List()
	if len(list) != 1 || list[0].ID != q.ID {
		t.Fatalf("List after Add = %v, want the one new entry", list)
	}

	if !bank.Remove(ctx, q.ID) {
		t.Fatal("Remove returned false for existing question")
	}
	if len(bank.List()) != 0 {
		t.Error("List after Remove should be empty")
	}

	if bank.Remove(ctx, "no-such-id") {
		t.Error("Remove of unknown id should return false")
	}
}

// TestFilePersistence tests the flat-file round trip across bank instances
func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	ctx := context.Background()

	first := store.NewBank(logger.New(), store.NewFilePersister(path))
	q, err := first.Add(ctx, "2+2?", []string{"3", "4", "5"}, 1, "math", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	second := store.NewBank(logger.New(), store.NewFilePersister(path))
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, ok := second.Get(q.ID)
	if !ok {
		t.Fatal("reloaded bank is missing the persisted question")
	}
	if got.Text != "2+2?" || got.CorrectIndex != 1 || got.Category != "math" {
		t.Errorf("reloaded question = %+v", got)
	}
}

// TestLoad_MissingFile tests that a missing file means an empty bank
func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	bank := store.NewBank(logger.New(), store.NewFilePersister(path))

	if err := bank.Load(context.Background()); err != nil {
		t.Fatalf("Load of missing file should succeed, got %v", err)
	}
	if bank.Count() != 0 {
		t.Errorf("expected empty bank, count = %d", bank.Count())
	}
}

// TestSaveFailure_KeepsInMemoryState tests that persistence failures never
// roll back the in-memory bank
func TestSaveFailure_KeepsInMemoryState(t *testing.T) {
	// A path inside a missing directory makes every save fail.
	path := filepath.Join(t.TempDir(), "missing-dir", "questions.json")
	bank := store.NewBank(logger.New(), store.NewFilePersister(path))

	q, err := bank.Add(context.Background(), "Still here?", []string{"yes", "no", "maybe"}, 0, "", "")
	if err != nil {
		t.Fatalf("Add should succeed despite save failure: %v", err)
	}
	if _, ok := bank.Get(q.ID); !ok {
		t.Error("in-memory bank must remain authoritative after save failure")
	}
}

// TestSQLitePersistence tests the SQLite round trip
func TestSQLitePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quiz.db")
	ctx := context.Background()

	persister, err := store.NewSQLitePersister(dbPath)
	if err != nil {
		t.Fatalf("NewSQLitePersister failed: %v", err)
	}
	defer persister.Close()

	bank := store.NewBank(logger.New(), persister)
	q1, err := bank.Add(ctx, "First?", []string{"a", "b", "c"}, 0, "", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	q2, err := bank.Add(ctx, "Second?", []string{"d", "e", "f"}, 2, "misc", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reloaded := store.NewBank(logger.New(), persister)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ids := reloaded.IDs()
	if len(ids) != 2 || ids[0] != q1.ID || ids[1] != q2.ID {
		t.Errorf("reloaded order = %v, want [%s %s]", ids, q1.ID, q2.ID)
	}

	got, ok := reloaded.Get(q2.ID)
	if !ok || got.CorrectIndex != 2 || got.Category != "misc" {
		t.Errorf("reloaded question = %+v", got)
	}
}
