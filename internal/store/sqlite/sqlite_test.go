package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func testRun(id string, op types.Op) *types.Run {
	return &types.Run{
		ID:       id,
		Op:       op,
		Source:   types.Source{Path: "/data/big.txt", Encoding: "utf-8"},
		Params:   map[string]string{"pattern": "foo"},
		Outputs:  []string{"/data/big.txt.temp"},
		Result:   "42",
		Duration: 3 * time.Millisecond,
	}
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	s, err := New(Config{Path: dbPath})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestStore_RecordAndGetRun(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	run := testRun("run-1", types.OpIndexOf)
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("failed to record run: %v", err)
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}

	if got.Op != types.OpIndexOf {
		t.Errorf("Op mismatch: got %s", got.Op)
	}
	if got.Source != run.Source {
		t.Errorf("Source mismatch: got %+v, want %+v", got.Source, run.Source)
	}
	if got.Params["pattern"] != "foo" {
		t.Errorf("Params mismatch: got %v", got.Params)
	}
	if len(got.Outputs) != 1 || got.Outputs[0] != "/data/big.txt.temp" {
		t.Errorf("Outputs mismatch: got %v", got.Outputs)
	}
	if got.Result != "42" || got.Duration != 3*time.Millisecond {
		t.Errorf("Result mismatch: got %s after %s", got.Result, got.Duration)
	}
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	_, err := s.GetRun(context.Background(), "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RecordRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	s.RecordRun(ctx, testRun("dup", types.OpLength))
	if err := s.RecordRun(ctx, testRun("dup", types.OpLength)); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestStore_ListRuns(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	ops := []types.Op{types.OpLength, types.OpReplace, types.OpReplace, types.OpSplit, types.OpReplace}
	for i, op := range ops {
		run := testRun(fmt.Sprintf("run-%d", i), op)
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	all, err := s.ListRuns(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 runs, got %d", len(all))
	}
	if all[0].ID != "run-0" {
		t.Errorf("expected oldest first, got %s", all[0].ID)
	}

	replaces, _ := s.ListRuns(ctx, store.ListOptions{Op: types.OpReplace})
	if len(replaces) != 3 {
		t.Errorf("expected 3 replace runs, got %d", len(replaces))
	}

	latest, _ := s.ListRuns(ctx, store.ListOptions{Limit: 2, Descending: true})
	if len(latest) != 2 || latest[0].ID != "run-4" || latest[1].ID != "run-3" {
		t.Errorf("unexpected newest runs: %v", runIDs(latest))
	}

	paged, _ := s.ListRuns(ctx, store.ListOptions{Limit: 2, Offset: 2})
	if len(paged) != 2 || paged[0].ID != "run-2" {
		t.Errorf("unexpected page: %v", runIDs(paged))
	}

	none, _ := s.ListRuns(ctx, store.ListOptions{Path: "/elsewhere.txt"})
	if len(none) != 0 {
		t.Errorf("expected no runs for another path, got %d", len(none))
	}
}

func runIDs(runs []*types.Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func TestStore_DeleteRuns(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	s.RecordRun(ctx, testRun("a", types.OpTrim))
	s.RecordRun(ctx, testRun("b", types.OpTrim))
	s.RecordRun(ctx, testRun("c", types.OpJoin))

	n, err := s.DeleteRuns(ctx, types.OpTrim)
	if err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	n, _ = s.DeleteRuns(ctx, "")
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	left, _ := s.ListRuns(ctx, store.ListOptions{})
	if len(left) != 0 {
		t.Errorf("expected empty journal, got %d runs", len(left))
	}
}

func TestStore_Lengths(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	if _, err := s.LookupLength(ctx, "k1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	rec := &types.LengthRecord{Key: "k1", Path: "/data/big.txt", Encoding: "utf-8", Chars: 1000}
	if err := s.SaveLength(ctx, rec); err != nil {
		t.Fatalf("failed to save length: %v", err)
	}

	rec.Chars = 1200
	if err := s.SaveLength(ctx, rec); err != nil {
		t.Fatalf("failed to replace length: %v", err)
	}

	got, err := s.LookupLength(ctx, "k1")
	if err != nil {
		t.Fatalf("failed to look up length: %v", err)
	}
	if got.Chars != 1200 || got.Path != "/data/big.txt" || got.NoCRLF {
		t.Errorf("unexpected record %+v", got)
	}

	s.SaveLength(ctx, &types.LengthRecord{Key: "k2", Path: "/data/other.txt", Encoding: "utf-8", Chars: 5})
	n, err := s.DeleteLengths(ctx)
	if err != nil {
		t.Fatalf("failed to delete lengths: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted lengths, got %d", n)
	}
	if _, err := s.LookupLength(ctx, "k1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	s.RecordRun(ctx, testRun("a", types.OpLength))
	s.RecordRun(ctx, testRun("b", types.OpLength))
	failed := testRun("c", types.OpInsertString)
	failed.Error = "offset out of range"
	s.RecordRun(ctx, failed)
	s.SaveLength(ctx, &types.LengthRecord{Key: "k", Path: "/p", Chars: 3})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	if stats.TotalRuns != 3 {
		t.Errorf("expected 3 runs, got %d", stats.TotalRuns)
	}
	if stats.RunsByOp[string(types.OpLength)] != 2 {
		t.Errorf("expected 2 length runs, got %d", stats.RunsByOp[string(types.OpLength)])
	}
	if stats.FailedRuns != 1 {
		t.Errorf("expected 1 failed run, got %d", stats.FailedRuns)
	}
	if stats.CachedLengths != 1 {
		t.Errorf("expected 1 cached length, got %d", stats.CachedLengths)
	}
	if stats.StorageBytes == 0 {
		t.Error("expected non-zero storage size")
	}
}

func TestStore_Compact(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		s.RecordRun(ctx, testRun(fmt.Sprintf("run-%d", i), types.OpReplace))
	}
	s.DeleteRuns(ctx, "")

	if err := s.Compact(ctx); err != nil {
		t.Errorf("failed to compact: %v", err)
	}
}

func TestStore_ConcurrentRecords(t *testing.T) {
	s := createTestStore(t)
	defer s.Close()

	ctx := context.Background()
	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			done <- s.RecordRun(ctx, testRun(fmt.Sprintf("c-%d", i), types.OpLength))
		}(i)
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent record failed: %v", err)
		}
	}

	stats, _ := s.Stats(ctx)
	if stats.TotalRuns != 10 {
		t.Errorf("expected 10 runs, got %d", stats.TotalRuns)
	}
}
