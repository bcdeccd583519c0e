package command

import (
	"io"
	"os"
	"strings"

	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/encoding"
)

const (
	// TrimSpace is removed by Trim. Tabs and line breaks are kept.
	TrimSpace = " "

	// TrimSpaceCRLF is removed by TrimNoCRLF
	TrimSpaceCRLF = TrimSpace + "\r\n"
)

const scanBlockSize = 64 * 1024

// Trim writes the source without its leading and trailing trim characters.
// The trailing count is measured before streaming (see TrailingCount); the
// forward pass stops writing at length minus that count.
type Trim struct {
	writer
	noCRLF  bool
	limit   int64 // first character index that is not written
	leading bool  // still skipping leading characters
}

// NewTrim removes TrimSpace from both ends of a source of length characters,
// trailing of which are trailing trim characters
func NewTrim(o Output, length, trailing int64) (*Trim, error) {
	return newTrim(o, false, length, trailing)
}

// NewTrimNoCRLF removes TrimSpaceCRLF from both ends
func NewTrimNoCRLF(o Output, length, trailing int64) (*Trim, error) {
	return newTrim(o, true, length, trailing)
}

func newTrim(o Output, noCRLF bool, length, trailing int64) (*Trim, error) {
	if trailing < 0 || trailing > length {
		return nil, fault.Invalid("trim", "trailing count %d for length %d", trailing, length)
	}
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &Trim{writer: w, noCRLF: noCRLF, limit: length - trailing, leading: true}, nil
}

func (t *Trim) Kind() Kind {
	if t.noCRLF {
		return KindTrimNoCRLF
	}
	return KindTrim
}

func (t *Trim) Plan() Plan { return Plan{} }
func (t *Trim) sealed()    {}

func (t *Trim) set() string {
	if t.noCRLF {
		return TrimSpaceCRLF
	}
	return TrimSpace
}

func (t *Trim) OnChunk(c chunking.Chunk) (bool, error) {
	runes := c.Runes
	lo := 0
	if t.leading {
		set := t.set()
		for lo < len(runes) && strings.ContainsRune(set, runes[lo]) {
			lo++
		}
		// A chunk made only of trim characters keeps the leading phase going.
		t.leading = lo == len(runes)
	}

	hi := len(runes)
	if c.Total > t.limit {
		hi = int(max(t.limit-c.Start(), 0))
	}
	if lo < hi {
		if err := t.writeRunes(runes[lo:hi]); err != nil {
			return false, err
		}
	}
	return c.Total >= t.limit, nil
}

func (t *Trim) OnComplete(int64, chunking.Chunk) error {
	return t.Close()
}

// TrailingCount returns how many characters at the end of the source belong
// to set. When every character of set encodes to the same number of bytes
// and the file size is a multiple of it, the file is scanned backwards from
// its end; otherwise the whole source is streamed forward once.
func TrailingCount(r *chunking.Reader, set string) (int64, error) {
	units, width, ok := encodedUnits(r.Encoding(), set)
	if ok {
		n, ok, err := scanBackwards(r.Source().Path, units, width)
		if err != nil || ok {
			return n, err
		}
	}

	var run int64
	err := r.Stream(0, "", chunking.ChunkFunc(func(c chunking.Chunk) (bool, error) {
		for _, ch := range c.Runes {
			if strings.ContainsRune(set, ch) {
				run++
			} else {
				run = 0
			}
		}
		return false, nil
	}))
	return run, err
}

// encodedUnits encodes each character of set. ok is false when the widths
// differ or the encoder is not a plain per-character mapping (e.g. it emits
// a byte order mark).
func encodedUnits(enc encoding.Encoding, set string) (map[string]bool, int, bool) {
	e := enc.NewEncoder()
	units := make(map[string]bool)
	width := 0
	for _, ch := range set {
		one, err := e.String(string(ch))
		if err != nil || one == "" {
			return nil, 0, false
		}
		two, err := e.String(string([]rune{ch, ch}))
		if err != nil || len(two) != 2*len(one) {
			return nil, 0, false
		}
		if width == 0 {
			width = len(one)
		} else if len(one) != width {
			return nil, 0, false
		}
		units[one] = true
	}
	return units, width, width > 0
}

// scanBackwards counts trailing units with random access reads from the end
// of the file. ok is false if the file size is not a multiple of width.
func scanBackwards(path string, units map[string]bool, width int) (n int64, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fault.New(fault.ErrSourceUnavailable, "open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, false, fault.New(fault.ErrSourceUnavailable, "stat", path, err)
	}
	size := info.Size()
	if size%int64(width) != 0 {
		return 0, false, nil
	}

	block := int64(scanBlockSize / width * width)
	buf := make([]byte, block)
	for end := size; end > 0; {
		start := max(end-block, 0)
		b := buf[:end-start]
		if _, err := f.ReadAt(b, start); err != nil && err != io.EOF {
			return 0, false, fault.New(fault.ErrSourceUnavailable, "read", path, err)
		}
		for i := len(b); i >= width; i -= width {
			if !units[string(b[i-width:i])] {
				return n, true, nil
			}
			n++
		}
		end = start
	}
	return n, true, nil
}
