package command

import (
	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseMap converts every chunk to upper or lower case using the mapping
// rules of a language
type CaseMap struct {
	writer
	upper bool
	caser cases.Caser
}

// ParseLocale resolves a BCP 47 tag; the empty string means no particular language
func ParseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fault.Invalid("locale", "%q: %v", locale, err)
	}
	return tag, nil
}

// NewToUpper upper-cases the source for tag
func NewToUpper(o Output, tag language.Tag) (*CaseMap, error) {
	return newCaseMap(o, true, cases.Upper(tag))
}

// NewToLower lower-cases the source for tag
func NewToLower(o Output, tag language.Tag) (*CaseMap, error) {
	return newCaseMap(o, false, cases.Lower(tag))
}

func newCaseMap(o Output, upper bool, caser cases.Caser) (*CaseMap, error) {
	w, err := newWriter(o)
	if err != nil {
		return nil, err
	}
	return &CaseMap{writer: w, upper: upper, caser: caser}, nil
}

func (m *CaseMap) Kind() Kind {
	if m.upper {
		return KindToUpper
	}
	return KindToLower
}

func (m *CaseMap) Plan() Plan { return Plan{} }
func (m *CaseMap) sealed()    {}

func (m *CaseMap) OnChunk(c chunking.Chunk) (bool, error) {
	return false, m.write(m.caser.String(c.String()))
}

func (m *CaseMap) OnComplete(int64, chunking.Chunk) error {
	return m.Close()
}
