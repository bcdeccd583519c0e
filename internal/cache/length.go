package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/fault"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

// sampleSize bytes from each end of a file go into its fingerprint
const sampleSize = 4096

// Fingerprint identifies one state of a source file. Any write that changes
// the size, the modification time, or the first or last sampleSize bytes
// produces a different fingerprint. A same-size rewrite that only touches
// the middle of a large file within the mtime granularity is not detected.
type Fingerprint struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Sample   string // hash of the head and tail bytes
	Encoding string
	NoCRLF   bool
}

// FingerprintOf stats and samples src and builds its fingerprint
func FingerprintOf(src types.Source, noCRLF bool) (Fingerprint, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return Fingerprint{}, fault.New(fault.ErrSourceUnavailable, "stat", src.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, fault.New(fault.ErrSourceUnavailable, "stat", src.Path, err)
	}
	sample, err := sampleOf(f, info.Size())
	if err != nil {
		return Fingerprint{}, fault.New(fault.ErrSourceUnavailable, "read", src.Path, err)
	}

	return Fingerprint{
		Path:     src.Path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Sample:   sample,
		Encoding: strings.ToLower(strings.TrimSpace(src.Encoding)),
		NoCRLF:   noCRLF,
	}, nil
}

// sampleOf hashes the first and last sampleSize bytes of f
func sampleOf(f *os.File, size int64) (string, error) {
	h := sha256.New()
	head := make([]byte, min(size, sampleSize))
	if _, err := f.ReadAt(head, 0); err != nil && err != io.EOF {
		return "", err
	}
	h.Write(head)

	if size > sampleSize {
		tail := make([]byte, min(size-sampleSize, sampleSize))
		if _, err := f.ReadAt(tail, size-int64(len(tail))); err != nil && err != io.EOF {
			return "", err
		}
		h.Write(tail)
	}
	return hex.EncodeToString(h.Sum(nil)[:8]), nil
}

// Key returns a stable hash of the fingerprint, used as cache and store key
func (f Fingerprint) Key() string {
	raw := fmt.Sprintf("%s|%d|%d|%s|%s|%t", f.Path, f.Size, f.ModTime.UnixNano(), f.Sample, f.Encoding, f.NoCRLF)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}

// LengthCache remembers character counts of source files
type LengthCache struct {
	lru *LRU[string, int64]
}

// NewLengthCache creates a length cache holding capacity fingerprints
func NewLengthCache(capacity int) *LengthCache {
	return &LengthCache{lru: NewLRU[string, int64](capacity)}
}

// Get returns the cached length for fp
func (c *LengthCache) Get(fp Fingerprint) (int64, bool) {
	return c.lru.Get(fp.Key())
}

// Put records the length for fp
func (c *LengthCache) Put(fp Fingerprint, chars int64) {
	c.lru.Add(fp.Key(), chars)
}

// Forget drops every cached length
func (c *LengthCache) Forget() {
	c.lru.Purge()
}

// Stats returns cache statistics
func (c *LengthCache) Stats() Stats {
	return c.lru.Stats()
}
