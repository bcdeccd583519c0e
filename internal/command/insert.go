package command

import (
	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/fault"
)

// Insert writes the source with text or another file inserted at a
// character offset. The source is streamed without a pattern, so every chunk
// but the last holds exactly chunkSize characters and the target chunk is
// found by integer division.
type Insert struct {
	writer
	offset    int64
	chunkSize int
	text      string
	file      *chunking.Reader
	done      bool
}

// NewInsertString inserts text at offset
func NewInsertString(o Output, chunkSize int, offset int64, text string) (*Insert, error) {
	return newInsert(o, chunkSize, offset, text, nil)
}

// NewInsertFile inserts the contents of file at offset
func NewInsertFile(o Output, chunkSize int, offset int64, file *chunking.Reader) (*Insert, error) {
	return newInsert(o, chunkSize, offset, "", file)
}

func newInsert(o Output, chunkSize int, offset int64, text string, file *chunking.Reader) (*Insert, error) {
	if offset < 0 {
		return nil, fault.Invalid("insert", "negative offset %d", offset)
	}
	if chunkSize <= 0 {
		return nil, fault.Invalid("insert", "chunk size %d", chunkSize)
	}
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &Insert{writer: w, offset: offset, chunkSize: chunkSize, text: text, file: file}, nil
}

func (x *Insert) Kind() Kind {
	if x.file != nil {
		return KindInsertFile
	}
	return KindInsertString
}

func (x *Insert) Plan() Plan { return Plan{} }
func (x *Insert) sealed()    {}

func (x *Insert) OnChunk(c chunking.Chunk) (bool, error) {
	if x.done {
		return false, x.writeRunes(c.Runes)
	}

	size := int64(x.chunkSize)
	local := int(x.offset % size)
	if c.Start()/size != x.offset/size || local > c.Len() {
		return false, x.writeRunes(c.Runes)
	}

	if err := x.writeRunes(c.Runes[:local]); err != nil {
		return false, err
	}
	if err := x.insert(); err != nil {
		return false, err
	}
	return false, x.writeRunes(c.Runes[local:])
}

func (x *Insert) OnComplete(total int64, _ chunking.Chunk) error {
	if !x.done {
		if x.offset > total {
			return fault.OutOfRange("insert", x.offset, total)
		}
		// The offset is the end of the source.
		if err := x.insert(); err != nil {
			return err
		}
	}
	return x.Close()
}

func (x *Insert) insert() error {
	x.done = true
	if x.file != nil {
		return x.copyInto(x.file)
	}
	return x.write(x.text)
}

// Substring writes the characters in [begin, end). The chunks holding begin
// and end are located the same way Insert finds its chunk; chunks before
// begin are skipped and the stream stops after the chunk holding end.
type Substring struct {
	writer
	begin, end int64
	chunkSize  int
}

// NewSubstring extracts [begin, end)
func NewSubstring(o Output, chunkSize int, begin, end int64) (*Substring, error) {
	if begin < 0 || end < begin {
		return nil, fault.Invalid("substring", "range [%d, %d)", begin, end)
	}
	if chunkSize <= 0 {
		return nil, fault.Invalid("substring", "chunk size %d", chunkSize)
	}
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &Substring{writer: w, begin: begin, end: end, chunkSize: chunkSize}, nil
}

func (x *Substring) Kind() Kind { return KindSubstring }
func (x *Substring) Plan() Plan { return Plan{} }
func (x *Substring) sealed()    {}

func (x *Substring) OnChunk(c chunking.Chunk) (bool, error) {
	if x.begin == x.end {
		return c.Total >= x.end, nil
	}

	size := int64(x.chunkSize)
	idx := c.Start() / size
	first, last := x.begin/size, (x.end-1)/size
	if idx < first {
		return false, nil
	}

	lo, hi := 0, c.Len()
	if idx == first {
		lo = int(x.begin % size)
	}
	if idx == last {
		hi = min(int((x.end-1)%size)+1, c.Len())
	}
	if lo < hi {
		if err := x.writeRunes(c.Runes[lo:hi]); err != nil {
			return false, err
		}
	}
	return idx >= last, nil
}

func (x *Substring) OnComplete(total int64, _ chunking.Chunk) error {
	if x.end > total {
		return fault.OutOfRange("substring", x.end, total)
	}
	return x.Close()
}
