package sink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shivavenkatesh/bigtext/internal/fault"
	"golang.org/x/text/encoding/charmap"
)

func TestSink_WritesUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := Create(path, nil)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	s.WriteString("héllo ")
	s.WriteRunes([]rune("wörld"))
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "héllo wörld" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestSink_EncodesTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	s, err := Create(path, charmap.ISO8859_1)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	if err := s.WriteString("Café"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, []byte{0x43, 0x61, 0x66, 0xE9}) {
		t.Errorf("unexpected bytes % x", data)
	}
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := Create(path, nil)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	err = s.WriteString("late")
	if !errors.Is(err, fault.ErrDestinationWrite) {
		t.Errorf("expected ErrDestinationWrite after close, got %v", err)
	}
}

func TestSink_CreateFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as an output file.
	_, err := Create(dir, nil)
	if !errors.Is(err, fault.ErrDestinationWrite) {
		t.Errorf("expected ErrDestinationWrite, got %v", err)
	}
}

func TestSink_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.txt")
	s, err := Create(path, nil)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("expected path %s, got %s", path, s.Path())
	}
}
