// Package tempfile allocates output paths for operations that write new files
package tempfile

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Allocator hands out output paths. The engine only consumes these paths;
// naming policy lives entirely here.
type Allocator interface {
	// Allocate returns the path for a single-output operation
	Allocate() string

	// AllocateSeq returns the path for the n-th output of a multi-output operation
	AllocateSeq(n int) string
}

// Namer builds an Allocator for operations on a given source path
type Namer func(source string) Allocator

// Sibling allocates "<source>.temp" and "<source>.temp<n>" next to the source.
// Every operation on the same source reuses the same names.
type Sibling struct {
	Source string
}

// Allocate returns "<source>.temp"
func (a Sibling) Allocate() string {
	return a.Source + ".temp"
}

// AllocateSeq returns "<source>.temp<n>"
func (a Sibling) AllocateSeq(n int) string {
	return fmt.Sprintf("%s.temp%d", a.Source, n)
}

// Unique allocates collision-free names tagged with a per-operation id.
// Outputs go to Dir, or next to the source when Dir is empty.
type Unique struct {
	Dir    string
	Source string
	ID     string
}

// NewUnique creates a Unique allocator with a fresh id
func NewUnique(dir, source string) *Unique {
	return &Unique{
		Dir:    dir,
		Source: source,
		ID:     uuid.New().String()[:8],
	}
}

// Allocate returns "<dir>/<base>.<id>.temp"
func (a *Unique) Allocate() string {
	return filepath.Join(a.dir(), fmt.Sprintf("%s.%s.temp", filepath.Base(a.Source), a.ID))
}

// AllocateSeq returns "<dir>/<base>.<id>.temp<n>"
func (a *Unique) AllocateSeq(n int) string {
	return filepath.Join(a.dir(), fmt.Sprintf("%s.%s.temp%d", filepath.Base(a.Source), a.ID, n))
}

func (a *Unique) dir() string {
	if a.Dir != "" {
		return a.Dir
	}
	return filepath.Dir(a.Source)
}

// UniqueIn returns a Namer producing Unique allocators in dir
func UniqueIn(dir string) Namer {
	return func(source string) Allocator {
		return NewUnique(dir, source)
	}
}

// SiblingNamer returns a Namer producing Sibling allocators
func SiblingNamer() Namer {
	return func(source string) Allocator {
		return Sibling{Source: source}
	}
}
