// Package bigtext provides the text operation service
package bigtext

import (
	"context"
	"errors"

	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/internal/tempfile"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

// ErrNoJournal is returned by journal queries when the service runs without a store
var ErrNoJournal = errors.New("journal disabled")

// Service runs string operations over large text files
type Service interface {
	// Length counts the characters of a source
	Length(ctx context.Context, req types.LengthRequest) (int64, error)

	// IndexOf returns the character index of the first occurrence of a pattern, or -1
	IndexOf(ctx context.Context, req types.IndexRequest) (int64, error)

	// Contains reports whether the pattern occurs at or after req.From
	Contains(ctx context.Context, req types.IndexRequest) (bool, error)

	// Replace writes a copy with every (or the first) occurrence replaced
	Replace(ctx context.Context, req types.ReplaceRequest) (*types.OutputResponse, error)

	// Split writes the parts between separators to numbered files
	Split(ctx context.Context, req types.SplitRequest) (*types.OutputResponse, error)

	// Join writes the source followed by delimited texts and files
	Join(ctx context.Context, req types.JoinRequest) (*types.OutputResponse, error)

	// Insert writes a copy with text or a file inserted at a character offset
	Insert(ctx context.Context, req types.InsertRequest) (*types.OutputResponse, error)

	// ChangeCase writes an upper- or lower-cased copy
	ChangeCase(ctx context.Context, req types.CaseRequest) (*types.OutputResponse, error)

	// Trim writes a copy without leading and trailing whitespace
	Trim(ctx context.Context, req types.TrimRequest) (*types.OutputResponse, error)

	// Substring writes the characters in [Begin, End)
	Substring(ctx context.Context, req types.SubstringRequest) (*types.OutputResponse, error)

	// Runs lists journaled operations
	Runs(ctx context.Context, opts store.ListOptions) ([]*types.Run, error)

	// GetRun retrieves one journaled operation
	GetRun(ctx context.Context, id string) (*types.Run, error)

	// ClearRuns deletes journaled operations of op. An empty op deletes every
	// run and drops all cached lengths as well.
	ClearRuns(ctx context.Context, op types.Op) (int64, error)

	// Stats returns journal and cache statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Close releases resources
	Close() error
}

// Config configures the service
type Config struct {
	ChunkSize       int    // Soft per-read budget in characters
	DefaultEncoding string // Used when a request names no encoding
	Locale          string // Default case mapping language (BCP 47)
	OutputDir       string // Where outputs go; next to the source when empty
	LengthCacheSize int    // Number of source lengths kept in memory

	// Namer allocates output paths; defaults to unique names in OutputDir
	Namer tempfile.Namer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		ChunkSize:       chunking.DefaultChunkSize,
		DefaultEncoding: chunking.DefaultEncoding,
		LengthCacheSize: 256,
	}
}
