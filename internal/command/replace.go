package command

import (
	"strings"

	"github.com/shivavenkatesh/bigtext/internal/chunking"
)

// Replace substitutes occurrences of old with new. In first-only mode a
// single occurrence is replaced and the rest of the source is copied verbatim.
type Replace struct {
	writer
	old, new string
	first    bool
	done     bool // first-only: the replacement has been made
}

// NewReplace replaces every occurrence
func NewReplace(o Output, old, new string) (*Replace, error) {
	return newReplace(o, old, new, false)
}

// NewReplaceFirst replaces the first occurrence only
func NewReplaceFirst(o Output, old, new string) (*Replace, error) {
	return newReplace(o, old, new, true)
}

func newReplace(o Output, old, new string, first bool) (*Replace, error) {
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &Replace{writer: w, old: old, new: new, first: first}, nil
}

func (r *Replace) Kind() Kind {
	if r.first {
		return KindReplaceFirst
	}
	return KindReplace
}

func (r *Replace) Plan() Plan { return Plan{Pattern: r.old} }
func (r *Replace) sealed()    {}

func (r *Replace) OnChunk(c chunking.Chunk) (bool, error) {
	if r.old == "" {
		return false, r.insertEverywhere(c)
	}

	s := c.String()
	if !r.first {
		return false, r.write(strings.ReplaceAll(s, r.old, r.new))
	}
	if r.done {
		return false, r.write(s)
	}
	i := strings.Index(s, r.old)
	if i < 0 {
		return false, r.write(s)
	}
	r.done = true
	return false, r.write(s[:i] + r.new + s[i+len(r.old):])
}

// insertEverywhere handles the empty pattern, which matches before every
// character and once more at the very end
func (r *Replace) insertEverywhere(c chunking.Chunk) error {
	if r.first {
		if !r.done {
			r.done = true
			if err := r.write(r.new); err != nil {
				return err
			}
		}
		return r.writeRunes(c.Runes)
	}

	var b strings.Builder
	for _, ch := range c.Runes {
		b.WriteString(r.new)
		b.WriteRune(ch)
	}
	return r.write(b.String())
}

func (r *Replace) OnComplete(int64, chunking.Chunk) error {
	if r.old == "" && (!r.first || !r.done) {
		if err := r.write(r.new); err != nil {
			return err
		}
	}
	return r.Close()
}
