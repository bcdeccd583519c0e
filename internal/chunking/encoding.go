package chunking

import (
	"fmt"
	"strings"

	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when a source names no encoding
const DefaultEncoding = "utf-8"

var utf8Encoding encoding.Encoding = unicode.UTF8

// LookupEncoding resolves an encoding name. UTF-8 (and the empty name)
// resolves to nil so callers can skip the transformer entirely.
func LookupEncoding(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	n := strings.ToLower(trimmed)
	switch n {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	if enc, err := ianaindex.IANA.Encoding(trimmed); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(n); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fault.New(fault.ErrUnsupportedEncoding, "encoding", "", fmt.Errorf("%q", name))
}
