package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shivavenkatesh/bigtext/pkg/types"
)

func TestLRU_AddGet(t *testing.T) {
	c := NewLRU[string, int](3)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if v, ok := c.Get(key); !ok || v != want {
			t.Errorf("expected %d for %s, got %v", want, key, v)
		}
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // "b" is now the oldest

	if !c.Add("c", 3) {
		t.Error("expected an eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}

func TestLRU_Update(t *testing.T) {
	c := NewLRU[string, int](2)

	c.Add("a", 1)
	if c.Add("a", 10) {
		t.Error("updating a key must not evict")
	}
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("expected 10, got %v", v)
	}
	if c.Len() != 1 {
		t.Errorf("expected len 1, got %d", c.Len())
	}
}

func TestLRU_PeekDoesNotCount(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Add("a", 1)

	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("peek should not touch stats, got %+v", s)
	}
}

func TestLRU_RemoveAndPurge(t *testing.T) {
	c := NewLRU[string, int](5)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("expected 'a' to be removed")
	}
	if c.Remove("a") {
		t.Error("second remove should report absence")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected 0 after purge, got %d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be purged")
	}
}

func TestLRU_ZeroCapacityDisables(t *testing.T) {
	c := NewLRU[string, int](0)
	c.Add("a", 1)

	if _, ok := c.Get("a"); ok {
		t.Error("expected nothing to be cached")
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[string, int](4)
	c.Add("x", 1)

	c.Get("x")
	c.Get("x")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	want := 2.0 / 3.0 * 100
	if rate := s.HitRate(); rate < want-1 || rate > want+1 {
		t.Errorf("expected hit rate ~%.1f%%, got %.1f%%", want, rate)
	}
}

func TestLengthCache_InvalidatedByWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	os.WriteFile(path, []byte("hello"), 0644)
	src := types.Source{Path: path}

	c := NewLengthCache(10)
	fp, err := FingerprintOf(src, false)
	if err != nil {
		t.Fatalf("failed to fingerprint: %v", err)
	}
	c.Put(fp, 5)

	if n, ok := c.Get(fp); !ok || n != 5 {
		t.Errorf("expected cached length 5, got %d", n)
	}

	// Other counting modes of the same file are cached separately.
	noCRLF, _ := FingerprintOf(src, true)
	if _, ok := c.Get(noCRLF); ok {
		t.Error("expected a miss for the no-CRLF count")
	}

	os.WriteFile(path, []byte("hello, world"), 0644)
	os.Chtimes(path, time.Now().Add(time.Hour), time.Now().Add(time.Hour))
	changed, _ := FingerprintOf(src, false)
	if changed.Key() == fp.Key() {
		t.Fatal("expected a new fingerprint after the file changed")
	}
	if _, ok := c.Get(changed); ok {
		t.Error("expected a miss for the changed file")
	}
}

func TestFingerprintOf_SameSizeRewrite(t *testing.T) {
	dir := t.TempDir()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		before string
		after  string
	}{
		{"small", "hello", "jello"},
		{"head of large", "x" + strings.Repeat("a", 3*sampleSize), "y" + strings.Repeat("a", 3*sampleSize)},
		{"tail of large", strings.Repeat("a", 3*sampleSize) + "x", strings.Repeat("a", 3*sampleSize) + "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".txt")
			src := types.Source{Path: path}

			os.WriteFile(path, []byte(tt.before), 0644)
			os.Chtimes(path, stamp, stamp)
			before, err := FingerprintOf(src, false)
			if err != nil {
				t.Fatalf("failed to fingerprint: %v", err)
			}

			// Same size, same modification time, different bytes.
			os.WriteFile(path, []byte(tt.after), 0644)
			os.Chtimes(path, stamp, stamp)
			after, err := FingerprintOf(src, false)
			if err != nil {
				t.Fatalf("failed to fingerprint: %v", err)
			}

			if before.Size != after.Size || !before.ModTime.Equal(after.ModTime) {
				t.Fatalf("expected identical size and mtime, got %+v and %+v", before, after)
			}
			if before.Key() == after.Key() {
				t.Error("expected the rewrite to change the fingerprint")
			}
		})
	}
}

func TestFingerprintOf_MissingFile(t *testing.T) {
	_, err := FingerprintOf(types.Source{Path: filepath.Join(t.TempDir(), "nope")}, false)
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func BenchmarkLRU_Add(b *testing.B) {
	c := NewLRU[int, int](1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(i%1000, i)
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU[int, int](1000)
	for i := 0; i < 1000; i++ {
		c.Add(i, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(i % 1000)
	}
}
