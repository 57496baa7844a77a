package dto

import (
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/shared/biztime"
)

// DisplayTimeLayout is how expiry timestamps are rendered for delivery to
// license holders, in the deployment's business timezone.
const DisplayTimeLayout = "2006-01-02 15:04 MST"

// IssuedLicenseDTO carries a freshly issued license back to the command
// surface for delivery to the principal. The only place the key leaves
// the core.
type IssuedLicenseDTO struct {
	PrincipalID      string    `json:"principal_id"`
	Key              string    `json:"key"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresAtDisplay string    `json:"expires_at_display"`
	AssetName        string    `json:"asset_name,omitempty"`
	QuotaBound       bool      `json:"quota_bound"`
}

// LicenseInfoDTO is issuer-visible license metadata. No key.
type LicenseInfoDTO struct {
	PrincipalID      string    `json:"principal_id"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresAtDisplay string    `json:"expires_at_display"`
	AssetName        string    `json:"asset_name,omitempty"`
	Expired          bool      `json:"expired"`
}

// QuotaDTO reports an issuer's remaining grant counter.
type QuotaDTO struct {
	IssuerID        string `json:"issuer_id"`
	RemainingGrants int    `json:"remaining_grants"`
}

// NewIssuedLicenseDTO maps a license aggregate to the issuance response.
func NewIssuedLicenseDTO(l *license.License, quotaBound bool) *IssuedLicenseDTO {
	return &IssuedLicenseDTO{
		PrincipalID:      l.PrincipalID(),
		Key:              l.Key(),
		IssuedAt:         l.IssuedAt(),
		ExpiresAt:        l.ExpiresAt(),
		ExpiresAtDisplay: biztime.FormatInBizTimezone(l.ExpiresAt(), DisplayTimeLayout),
		AssetName:        l.EntitledAsset(),
		QuotaBound:       quotaBound,
	}
}

// NewLicenseInfoDTO maps a license aggregate to issuer-visible metadata.
func NewLicenseInfoDTO(l *license.License, now time.Time) *LicenseInfoDTO {
	return &LicenseInfoDTO{
		PrincipalID:      l.PrincipalID(),
		IssuedAt:         l.IssuedAt(),
		ExpiresAt:        l.ExpiresAt(),
		ExpiresAtDisplay: biztime.FormatInBizTimezone(l.ExpiresAt(), DisplayTimeLayout),
		AssetName:        l.EntitledAsset(),
		Expired:          l.IsExpiredAt(now),
	}
}
