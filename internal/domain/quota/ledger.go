// Package quota tracks per-issuer remaining-grant counters.
// An issuer with no configured grant and one whose grants are exhausted
// both read as zero, and both deny issuance.
package quota

import "context"

// Ledger defines the interface for quota persistence operations.
// Decrement must be a single atomic conditional update at the storage
// layer, never a read-then-write pair, so that two concurrent issuances
// by the same issuer never both succeed on the last remaining grant.
type Ledger interface {
	// Remaining returns the grant counter for an issuer.
	// Unknown issuers read as 0 and are not an error.
	Remaining(ctx context.Context, issuerID string) (int, error)

	// Decrement atomically decrements the counter only while it is
	// positive. Returns false with no state change when the counter is
	// already 0 or the issuer is unknown.
	Decrement(ctx context.Context, issuerID string) (bool, error)

	// Increment adds one grant back. It exists solely as the best-effort
	// compensation when a license persist fails after a decrement.
	Increment(ctx context.Context, issuerID string) error

	// Set overrides the counter to an admin-chosen value, creating the
	// issuer row when absent. Negative values are rejected.
	Set(ctx context.Context, issuerID string, remaining int) error
}
