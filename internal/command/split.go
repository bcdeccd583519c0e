package command

import (
	"strings"

	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/sink"
)

// Split writes the text between separators to numbered output files. With a
// positive limit at most limit parts are produced and the last part keeps
// any remaining separators as literal text.
type Split struct {
	out     Output
	sep     string
	limit   int
	cur     *sink.Sink
	outputs []string
}

// NewSplit creates the first part immediately, so an empty source still
// yields one (empty) part
func NewSplit(o Output, sep string, limit int) (*Split, error) {
	s := &Split{out: o, sep: sep, limit: limit}
	if err := s.next(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Split) Kind() Kind { return KindSplit }
func (s *Split) Plan() Plan { return Plan{Pattern: s.sep} }
func (s *Split) sealed()    {}

func (s *Split) Outputs() []string {
	return append([]string(nil), s.outputs...)
}

func (s *Split) Close() error {
	if s.cur == nil {
		return nil
	}
	return s.cur.Close()
}

// next closes the current part and opens the following one
func (s *Split) next() error {
	if s.cur != nil {
		if err := s.cur.Close(); err != nil {
			return err
		}
	}
	path := s.out.Alloc.AllocateSeq(len(s.outputs) + 1)
	f, err := sink.Create(path, s.out.Encoding)
	if err != nil {
		return err
	}
	s.cur = f
	s.outputs = append(s.outputs, path)
	return nil
}

func (s *Split) exhausted() bool {
	return s.sep == "" || (s.limit > 0 && len(s.outputs) >= s.limit)
}

func (s *Split) OnChunk(c chunking.Chunk) (bool, error) {
	text := c.String()
	for !s.exhausted() {
		i := strings.Index(text, s.sep)
		if i < 0 {
			break
		}
		if err := s.cur.WriteString(text[:i]); err != nil {
			return false, err
		}
		// A separator ending exactly at the chunk edge still opens the next part.
		if err := s.next(); err != nil {
			return false, err
		}
		text = text[i+len(s.sep):]
	}
	return false, s.cur.WriteString(text)
}

func (s *Split) OnComplete(int64, chunking.Chunk) error {
	return s.Close()
}
