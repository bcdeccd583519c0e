package chunking

import (
	"bufio"
	"io"
	"os"

	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/transform"
)

const readBufferSize = 64 * 1024

// Stream is a pull-based, finite, non-restartable sequence of chunks.
// A Stream is not safe for concurrent use.
type Stream struct {
	path    string
	file    *os.File
	br      *bufio.Reader
	pattern []rune
	pad     int

	carry []rune // characters read but deferred to the next chunk
	total int64
	eof   bool
}

// Open opens a stream positioned offset characters into the source
func (r *Reader) Open(offset int64, pattern string) (*Stream, error) {
	if offset < 0 {
		return nil, invalidOffset(offset)
	}

	f, err := os.Open(r.src.Path)
	if err != nil {
		return nil, fault.New(fault.ErrSourceUnavailable, "open", r.src.Path, err)
	}

	var rd io.Reader = f
	if r.enc != nil {
		rd = transform.NewReader(f, r.enc.NewDecoder())
	}

	pat := []rune(pattern)
	s := &Stream{
		path:    r.src.Path,
		file:    f,
		br:      bufio.NewReaderSize(rd, readBufferSize),
		pattern: pat,
		pad:     r.ReadSize(len(pat)),
	}

	if err := s.skip(offset); err != nil {
		f.Close()
		return nil, err
	}

	return s, nil
}

// Next returns the next chunk; ok is false once the source is exhausted
func (s *Stream) Next() (chunk Chunk, ok bool, err error) {
	if s.eof && len(s.carry) == 0 {
		return Chunk{}, false, nil
	}

	want := s.pad
	if len(s.carry) > 0 {
		want = max(s.pad-len(s.carry), 1)
	}

	buf := make([]rune, len(s.carry), len(s.carry)+want+len(s.pattern))
	copy(buf, s.carry)
	s.carry = nil

	if buf, err = s.fill(buf, want); err != nil {
		return Chunk{}, false, err
	}

	if len(s.pattern) > 0 && !s.eof {
		if buf, err = s.completeBoundary(buf); err != nil {
			return Chunk{}, false, err
		}
	}

	if len(buf) == 0 {
		return Chunk{}, false, nil
	}

	s.total += int64(len(buf))
	return Chunk{Runes: buf, Total: s.total}, true, nil
}

// Total returns the characters consumed so far, including the skipped offset
func (s *Stream) Total() int64 {
	return s.total
}

// Close releases the file handle
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fault.New(fault.ErrSourceUnavailable, "close", s.path, err)
	}
	return nil
}

// completeBoundary appends the characters needed to finish a match that
// runs off the end of buf. A chunk never grows past pad+len(pattern): when
// the top-up would overshoot, the partial match is deferred to the next
// chunk instead. If the appended characters leave another partial match at
// the tail, that tail is deferred too.
func (s *Stream) completeBoundary(buf []rune) ([]rune, error) {
	m := len(s.pattern)
	end := scanEnd(buf, s.pattern, 0)
	k := MatchRemainder(buf[end:], s.pattern)
	if k <= 0 {
		return buf, nil
	}

	// A candidate at index 0 always fits: it is shorter than the pattern.
	start := len(buf) - (m - k)
	if start > 0 && len(buf)+k > s.pad+m {
		return s.hold(buf, start), nil
	}

	buf, err := s.fill(buf, k)
	if err != nil || s.eof {
		return buf, err
	}

	end = scanEnd(buf, s.pattern, end)
	if k = MatchRemainder(buf[end:], s.pattern); k > 0 {
		buf = s.hold(buf, len(buf)-(m-k))
	}
	return buf, nil
}

// hold moves buf[from:] into the carry and returns the rest. The chunk is
// never emptied.
func (s *Stream) hold(buf []rune, from int) []rune {
	if from <= 0 {
		return buf
	}
	s.carry = append([]rune(nil), buf[from:]...)
	return buf[:from]
}

// fill appends up to n characters to buf, stopping at end of file
func (s *Stream) fill(buf []rune, n int) ([]rune, error) {
	for i := 0; i < n; i++ {
		r, _, err := s.br.ReadRune()
		if err == io.EOF {
			s.eof = true
			break
		}
		if err != nil {
			return buf, fault.New(fault.ErrSourceUnavailable, "read", s.path, err)
		}
		buf = append(buf, r)
	}
	return buf, nil
}

// skip discards n characters; skipping past the end is not an error
func (s *Stream) skip(n int64) error {
	for ; n > 0; n-- {
		_, _, err := s.br.ReadRune()
		if err == io.EOF {
			s.eof = true
			return nil
		}
		if err != nil {
			return fault.New(fault.ErrSourceUnavailable, "skip", s.path, err)
		}
		s.total++
	}
	return nil
}
