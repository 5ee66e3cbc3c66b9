package domain

import "context"

// SnapshotRepository defines the interface for allocation snapshot
// persistence operations. A snapshot is the literal current allocation
// list, so restoring it reproduces the engine's invariants exactly.
type SnapshotRepository interface {
	// Save persists the allocation list as a new snapshot
	Save(ctx context.Context, allocations []Allocation) error

	// LoadLatest retrieves the most recently saved allocation list
	// Returns nil, nil when no snapshot has been saved yet
	LoadLatest(ctx context.Context) ([]Allocation, error)
}
