// Package sink writes transformed text to output files
package sink

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const writeBufferSize = 64 * 1024

// Sink is a sequential, buffered, encoded output file. It is closed exactly
// once: Close is idempotent and reports the first failure.
type Sink struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	enc    io.WriteCloser // encoding transformer, nil for UTF-8
	w      io.Writer
	closed bool
	err    error
}

// Create truncates or creates path and returns a sink writing enc.
// A nil encoding, or UTF-8, writes the text unchanged.
func Create(path string, enc encoding.Encoding) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fault.New(fault.ErrDestinationWrite, "create", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fault.New(fault.ErrDestinationWrite, "create", path, err)
	}

	s := &Sink{
		path: path,
		file: f,
		buf:  bufio.NewWriterSize(f, writeBufferSize),
	}
	s.w = s.buf

	if enc != nil && enc != unicode.UTF8 {
		// Characters the target encoding cannot represent are replaced
		// rather than failing the whole operation.
		tw := transform.NewWriter(s.buf, encoding.ReplaceUnsupported(enc.NewEncoder()))
		s.enc = tw
		s.w = tw
	}

	return s, nil
}

// Path returns the destination path
func (s *Sink) Path() string {
	return s.path
}

// WriteString writes text; after the first failure every write fails
func (s *Sink) WriteString(text string) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return fault.New(fault.ErrDestinationWrite, "write", s.path, os.ErrClosed)
	}
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		s.err = fault.New(fault.ErrDestinationWrite, "write", s.path, err)
		return s.err
	}
	return nil
}

// WriteRunes writes a slice of characters
func (s *Sink) WriteRunes(runes []rune) error {
	return s.WriteString(string(runes))
}

// Close flushes the encoder and buffer and closes the file. The file is
// released even when flushing fails.
func (s *Sink) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true

	var err error
	if s.enc != nil {
		err = s.enc.Close()
	}
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}

	if err != nil && s.err == nil {
		s.err = fault.New(fault.ErrDestinationWrite, "close", s.path, err)
	}
	return s.err
}
