package command

import (
	"github.com/shivavenkatesh/bigtext/internal/chunking"
)

// Length counts the characters of a source, optionally ignoring CR and LF
type Length struct {
	noCRLF bool
	n      int64
}

// NewLength counts every character
func NewLength() *Length {
	return &Length{}
}

// NewLengthNoCRLF counts every character except '\r' and '\n'
func NewLengthNoCRLF() *Length {
	return &Length{noCRLF: true}
}

func (l *Length) Kind() Kind {
	if l.noCRLF {
		return KindLengthNoCRLF
	}
	return KindLength
}

func (l *Length) Plan() Plan        { return Plan{} }
func (l *Length) Outputs() []string { return nil }
func (l *Length) Close() error      { return nil }
func (l *Length) sealed()           {}

func (l *Length) OnChunk(c chunking.Chunk) (bool, error) {
	if !l.noCRLF {
		l.n += int64(c.Len())
		return false, nil
	}
	for _, r := range c.Runes {
		if r != '\n' && r != '\r' {
			l.n++
		}
	}
	return false, nil
}

func (l *Length) OnComplete(int64, chunking.Chunk) error {
	return nil
}

// Result returns the count once the stream has completed
func (l *Length) Result() int64 {
	return l.n
}

// IndexOf finds the first occurrence of a pattern at or after a character offset
type IndexOf struct {
	pattern []rune
	from    int64
	index   int64
	found   bool
}

// NewIndexOf searches for pattern starting at from
func NewIndexOf(pattern string, from int64) *IndexOf {
	if from < 0 {
		from = 0
	}
	return &IndexOf{
		pattern: []rune(pattern),
		from:    from,
		index:   -1,
	}
}

func (x *IndexOf) Kind() Kind        { return KindIndexOf }
func (x *IndexOf) Outputs() []string { return nil }
func (x *IndexOf) Close() error      { return nil }
func (x *IndexOf) sealed()           {}

func (x *IndexOf) Plan() Plan {
	return Plan{Offset: x.from, Pattern: string(x.pattern)}
}

func (x *IndexOf) OnChunk(c chunking.Chunk) (bool, error) {
	i := chunking.IndexRunes(c.Runes, x.pattern)
	if i < 0 {
		return false, nil
	}
	x.index = c.Total - int64(c.Len()-i)
	x.found = true
	return true, nil
}

func (x *IndexOf) OnComplete(total int64, _ chunking.Chunk) error {
	// The empty pattern occurs at the start position, clamped to the end.
	if !x.found && len(x.pattern) == 0 {
		x.index = total
		x.found = true
	}
	return nil
}

// Result returns the absolute character index, or -1 if there is none
func (x *IndexOf) Result() int64 {
	return x.index
}
