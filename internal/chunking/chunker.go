// Package chunking streams text files as bounded chunks of characters
package chunking

import (
	"github.com/shivavenkatesh/bigtext/internal/fault"
	"github.com/shivavenkatesh/bigtext/pkg/types"
	"golang.org/x/text/encoding"
)

// DefaultChunkSize is the soft per-read budget in characters
const DefaultChunkSize = 2000

// Chunk is an in-order slice of a file's characters
type Chunk struct {
	Runes []rune // characters of this chunk, owned by the consumer for one callback
	Total int64  // characters consumed so far including this chunk, counted from the file start
}

// Len returns the number of characters in the chunk
func (c Chunk) Len() int {
	return len(c.Runes)
}

// Start returns the character offset of the chunk's first character
func (c Chunk) Start() int64 {
	return c.Total - int64(len(c.Runes))
}

// String returns the chunk as UTF-8 text
func (c Chunk) String() string {
	return string(c.Runes)
}

// Consumer receives the chunks of a stream
type Consumer interface {
	// OnChunk handles one chunk; returning stop=true ends the stream early
	OnChunk(c Chunk) (stop bool, err error)

	// OnComplete is called exactly once after the last chunk, whether the
	// source was exhausted or the consumer stopped the stream
	OnComplete(total int64, last Chunk) error
}

// ChunkFunc adapts a plain function to a Consumer with no completion step
type ChunkFunc func(c Chunk) (bool, error)

// OnChunk calls f(c)
func (f ChunkFunc) OnChunk(c Chunk) (bool, error) {
	return f(c)
}

// OnComplete does nothing
func (f ChunkFunc) OnComplete(int64, Chunk) error {
	return nil
}

// Reader produces chunk streams over one source file. A Reader only holds
// the resolved source description; every stream opens its own file handle.
type Reader struct {
	src  types.Source
	enc  encoding.Encoding // nil means UTF-8 read without a transformer
	size int
}

// NewReader creates a reader for src with the given chunk budget. The
// encoding is resolved here, so an unsupported encoding fails before any
// chunk is produced.
func NewReader(src types.Source, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	enc, err := LookupEncoding(src.Encoding)
	if err != nil {
		return nil, err
	}
	return &Reader{
		src:  src,
		enc:  enc,
		size: chunkSize,
	}, nil
}

// Source returns the source this reader streams
func (r *Reader) Source() types.Source {
	return r.src
}

// ChunkSize returns the soft per-read budget
func (r *Reader) ChunkSize() int {
	return r.size
}

// Encoding returns the resolved encoding of the source
func (r *Reader) Encoding() encoding.Encoding {
	if r.enc == nil {
		return utf8Encoding
	}
	return r.enc
}

// ReadSize returns how many characters each read requests when streaming
// with a pattern of patternLen characters.
//
// The budget is shrunk by the pattern length so a match started near the tail
// can be completed without exceeding the budget. Patterns more than twice the
// budget become the read unit themselves, and when the difference is not
// positive a fifth of the budget is read so the stream always progresses.
func (r *Reader) ReadSize(patternLen int) int {
	if patternLen <= 0 {
		return r.size
	}
	pad := r.size - patternLen
	if abs(pad) > r.size {
		pad = patternLen
	}
	if pad <= 0 {
		pad = r.size / 5
	}
	if pad <= 0 {
		pad = 1
	}
	return pad
}

// Stream reads the source from the character offset and hands every chunk
// to c. With a non-empty pattern, no leftmost occurrence of the pattern is
// ever split across two chunks. OnComplete runs once unless reading fails;
// the file handle is released before Stream returns.
func (r *Reader) Stream(offset int64, pattern string, c Consumer) (err error) {
	s, err := r.Open(offset, pattern)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var last Chunk
	for {
		chunk, ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		last = chunk
		stop, err := c.OnChunk(chunk)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}

	return c.OnComplete(s.Total(), last)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// invalidOffset is returned for negative stream offsets
func invalidOffset(offset int64) error {
	return fault.Invalid("stream", "negative offset %d", offset)
}
