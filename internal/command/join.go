package command

import (
	"github.com/shivavenkatesh/bigtext/internal/chunking"
)

// Part is one piece appended by Join: literal text, or the contents of
// another source when File is set
type Part struct {
	Text string
	File *chunking.Reader
}

// Join copies the source and then appends each part, preceded by the
// delimiter. Nothing follows the last part.
type Join struct {
	writer
	delim string
	parts []Part
}

// NewJoin creates a join of the source with parts
func NewJoin(o Output, delim string, parts []Part) (*Join, error) {
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &Join{writer: w, delim: delim, parts: parts}, nil
}

func (j *Join) Kind() Kind { return KindJoin }
func (j *Join) Plan() Plan { return Plan{} }
func (j *Join) sealed()    {}

func (j *Join) OnChunk(c chunking.Chunk) (bool, error) {
	return false, j.writeRunes(c.Runes)
}

func (j *Join) OnComplete(int64, chunking.Chunk) error {
	for _, p := range j.parts {
		if err := j.write(j.delim); err != nil {
			return err
		}
		if p.File != nil {
			if err := j.copyInto(p.File); err != nil {
				return err
			}
			continue
		}
		if err := j.write(p.Text); err != nil {
			return err
		}
	}
	return j.Close()
}
