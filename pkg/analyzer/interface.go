package analyzer

import (
	"context"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// Check inspects a track record by record and reports problems.
// Each check (gap, order, jump, fix) implements this interface.
type Check interface {
	// Name returns the check name for reporting.
	Name() string

	// Type returns the check type.
	Type() CheckType

	// Process handles a single record at its sequence index.
	// Returns nil on success, error on fatal problems.
	Process(ctx context.Context, index int, r track.Record) error

	// Finalize completes analysis and returns detected issues.
	// Called after all records have been processed.
	Finalize(ctx context.Context) (*CheckResult, error)

	// Reset clears internal state for reuse.
	Reset()
}
