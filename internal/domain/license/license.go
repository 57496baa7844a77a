package license

import (
	"crypto/subtle"
	"fmt"
	"time"
)

// License is the aggregate root for an issued license key.
// At most one license exists per principal; a new issuance for the same
// principal supersedes the previous one.
type License struct {
	principalID   string
	key           string
	issuedAt      time.Time
	expiresAt     time.Time
	entitledAsset string // empty means default/any per deployment policy
}

// NewLicense creates a freshly issued license. issuedAt is normalized to
// UTC and expiry is persisted explicitly, never recomputed later.
func NewLicense(principalID, key string, issuedAt time.Time, duration time.Duration, entitledAsset string) (*License, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID is required")
	}
	if !IsWellFormedKey(key) {
		return nil, fmt.Errorf("malformed license key")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("license duration must be positive")
	}

	issuedAt = issuedAt.UTC()
	return &License{
		principalID:   principalID,
		key:           key,
		issuedAt:      issuedAt,
		expiresAt:     issuedAt.Add(duration),
		entitledAsset: entitledAsset,
	}, nil
}

// ReconstructLicense rebuilds a license from persistence.
func ReconstructLicense(principalID, key string, issuedAt, expiresAt time.Time, entitledAsset string) (*License, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID is required")
	}
	if !IsWellFormedKey(key) {
		return nil, fmt.Errorf("malformed license key for principal %s", principalID)
	}
	if expiresAt.IsZero() {
		return nil, fmt.Errorf("expiry is required for principal %s", principalID)
	}
	if !expiresAt.After(issuedAt) {
		return nil, fmt.Errorf("expiry precedes issuance for principal %s", principalID)
	}

	return &License{
		principalID:   principalID,
		key:           key,
		issuedAt:      issuedAt.UTC(),
		expiresAt:     expiresAt.UTC(),
		entitledAsset: entitledAsset,
	}, nil
}

// PrincipalID returns the license holder's identifier
func (l *License) PrincipalID() string {
	return l.principalID
}

// Key returns the redemption secret
func (l *License) Key() string {
	return l.key
}

// IssuedAt returns the issuance instant in UTC
func (l *License) IssuedAt() time.Time {
	return l.issuedAt
}

// ExpiresAt returns the expiry instant in UTC
func (l *License) ExpiresAt() time.Time {
	return l.expiresAt
}

// EntitledAsset returns the asset this license is scoped to, or empty
// when the license unlocks the deployment default.
func (l *License) EntitledAsset() string {
	return l.entitledAsset
}

// MatchesKey compares a presented key against the stored one in constant
// time. The key is the sole redemption secret.
func (l *License) MatchesKey(presented string) bool {
	return subtle.ConstantTimeCompare([]byte(l.key), []byte(presented)) == 1
}

// IsExpiredAt reports whether the license is expired at the given instant.
// The boundary instant itself counts as expired.
func (l *License) IsExpiredAt(now time.Time) bool {
	return !now.UTC().Before(l.expiresAt)
}

// PermitsAsset reports whether this license may unlock the requested
// asset. An unscoped license permits anything; an empty request falls
// back to the license's own scope.
func (l *License) PermitsAsset(requested string) bool {
	if l.entitledAsset == "" || requested == "" {
		return true
	}
	return l.entitledAsset == requested
}
