// Package command implements the string operations as stream consumers.
//
// Every operation is one of a closed set of variants. Each variant keeps its
// own state and is driven through chunking.Consumer by Run; the variants never
// reason about chunk boundaries themselves, because the reader guarantees that
// no leftmost pattern occurrence is split across two chunks.
package command

import (
	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/sink"
	"github.com/shivavenkatesh/bigtext/internal/tempfile"
	"github.com/shivavenkatesh/bigtext/pkg/types"
	"golang.org/x/text/encoding"
)

// Kind identifies a command variant
type Kind int

const (
	KindLength Kind = iota
	KindLengthNoCRLF
	KindIndexOf
	KindReplace
	KindReplaceFirst
	KindSplit
	KindJoin
	KindInsertString
	KindInsertFile
	KindToLower
	KindToUpper
	KindTrim
	KindTrimNoCRLF
	KindSubstring
)

var kindOps = [...]types.Op{
	KindLength:       types.OpLength,
	KindLengthNoCRLF: types.OpLengthNoCRLF,
	KindIndexOf:      types.OpIndexOf,
	KindReplace:      types.OpReplace,
	KindReplaceFirst: types.OpReplaceFirst,
	KindSplit:        types.OpSplit,
	KindJoin:         types.OpJoin,
	KindInsertString: types.OpInsertString,
	KindInsertFile:   types.OpInsertFile,
	KindToLower:      types.OpToLower,
	KindToUpper:      types.OpToUpper,
	KindTrim:         types.OpTrim,
	KindTrimNoCRLF:   types.OpTrimNoCRLF,
	KindSubstring:    types.OpSubstring,
}

// Op returns the journal name of the kind
func (k Kind) Op() types.Op {
	if k < 0 || int(k) >= len(kindOps) {
		return types.Op("unknown")
	}
	return kindOps[k]
}

func (k Kind) String() string {
	return string(k.Op())
}

// Plan tells the reader where a command's stream starts and which pattern
// the chunks are sized for
type Plan struct {
	Offset  int64
	Pattern string
}

// Command is a single operation invocation. Implementations live in this
// package only.
type Command interface {
	chunking.Consumer

	// Kind reports the variant
	Kind() Kind

	// Plan reports how the source must be streamed for this command
	Plan() Plan

	// Outputs lists the files written so far, in order
	Outputs() []string

	// Close releases every output handle; it is safe to call more than once
	Close() error

	sealed()
}

// Output says where and how a writing command stores its result
type Output struct {
	Alloc    tempfile.Allocator
	Encoding encoding.Encoding // nil writes UTF-8
}

// Run streams r through c. Outputs are closed on every path, including
// early termination and read failures.
func Run(r *chunking.Reader, c Command) (err error) {
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p := c.Plan()
	return r.Stream(p.Offset, p.Pattern, c)
}

// writer is the single-output part shared by the writing commands
type writer struct {
	out *sink.Sink
}

func newWriter(o Output) (writer, error) {
	s, err := sink.Create(o.Alloc.Allocate(), o.Encoding)
	if err != nil {
		return writer{}, err
	}
	return writer{out: s}, nil
}

func (w *writer) Outputs() []string {
	if w.out == nil {
		return nil
	}
	return []string{w.out.Path()}
}

func (w *writer) Close() error {
	if w.out == nil {
		return nil
	}
	return w.out.Close()
}

func (w *writer) write(s string) error {
	return w.out.WriteString(s)
}

func (w *writer) writeRunes(r []rune) error {
	return w.out.WriteRunes(r)
}

// copyInto streams another source into w unchanged
func (w *writer) copyInto(r *chunking.Reader) error {
	return r.Stream(0, "", chunking.ChunkFunc(func(c chunking.Chunk) (bool, error) {
		return false, w.writeRunes(c.Runes)
	}))
}
