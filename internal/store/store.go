// Package store defines the operation journal interface
package store

import (
	"context"
	"errors"

	"github.com/shivavenkatesh/bigtext/pkg/types"
)

// ErrNotFound is returned when a run or length record does not exist
var ErrNotFound = errors.New("not found")

// Store persists executed operations and computed source lengths
type Store interface {
	// RecordRun journals a finished operation
	RecordRun(ctx context.Context, run *types.Run) error

	// GetRun retrieves a run by ID
	GetRun(ctx context.Context, id string) (*types.Run, error)

	// ListRuns returns runs with filtering and pagination
	ListRuns(ctx context.Context, opts ListOptions) ([]*types.Run, error)

	// DeleteRuns removes the runs of one operation, or every run when op is empty
	DeleteRuns(ctx context.Context, op types.Op) (int64, error)

	// LookupLength returns the stored length for a fingerprint key
	LookupLength(ctx context.Context, key string) (*types.LengthRecord, error)

	// SaveLength stores or replaces a length record
	SaveLength(ctx context.Context, rec *types.LengthRecord) error

	// DeleteLengths removes every stored length record
	DeleteLengths(ctx context.Context) (int64, error)

	// Stats returns journal statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Compact optimizes storage (VACUUM)
	Compact(ctx context.Context) error

	// Close releases resources
	Close() error
}

// ListOptions configures run listing
type ListOptions struct {
	Op         types.Op
	Path       string // Only runs on this source path
	Limit      int
	Offset     int
	Descending bool
}
