package license

import (
	"context"
	"time"
)

// Repository defines the interface for license persistence operations.
// All implementations must guarantee that Upsert is atomic: a concurrent
// reader never observes a half-written record, and the last writer wins.
type Repository interface {
	// Upsert writes the license keyed by principal, overwriting any
	// previous license for the same principal.
	Upsert(ctx context.Context, l *License) error

	// GetByPrincipal retrieves the license for a principal.
	// Returns ErrLicenseNotFound when no record exists.
	GetByPrincipal(ctx context.Context, principalID string) (*License, error)

	// Delete removes the license for a principal and reports whether a
	// record existed.
	Delete(ctx context.Context, principalID string) (bool, error)

	// ListExpired returns licenses whose expiry lies at or before asOf.
	// Malformed rows are skipped with a diagnostic, never abort the scan.
	ListExpired(ctx context.Context, asOf time.Time) ([]*License, error)
}
