package license

import (
	"time"

	"keygate/internal/domain/shared/events"
)

const (
	EventLicenseIssued    = "license.issued"
	EventLicenseValidated = "license.validated"
	EventLicenseRevoked   = "license.revoked"
)

// IssuedEvent is published after a license is persisted. The key itself is
// deliberately absent: audit trails never carry the redemption secret.
type IssuedEvent struct {
	events.BaseEvent
	PrincipalID string    `json:"principal_id"`
	IssuerID    string    `json:"issuer_id"`
	AssetName   string    `json:"asset_name,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	QuotaBound  bool      `json:"quota_bound"`
}

// NewIssuedEvent builds an issuance audit event.
func NewIssuedEvent(principalID, issuerID, assetName string, expiresAt time.Time, quotaBound bool, occurredAt time.Time) *IssuedEvent {
	return &IssuedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: principalID,
			EventType:   EventLicenseIssued,
			OccurredAt:  occurredAt,
		},
		PrincipalID: principalID,
		IssuerID:    issuerID,
		AssetName:   assetName,
		ExpiresAt:   expiresAt,
		QuotaBound:  quotaBound,
	}
}

// ValidatedEvent is published after every redemption attempt, admitted or not.
type ValidatedEvent struct {
	events.BaseEvent
	PrincipalID string     `json:"principal_id"`
	Admitted    bool       `json:"admitted"`
	Reason      DenyReason `json:"reason,omitempty"`
	AssetName   string     `json:"asset_name,omitempty"`
	RemoteIP    string     `json:"remote_ip,omitempty"`
}

// NewValidatedEvent builds a redemption audit event.
func NewValidatedEvent(principalID string, decision Decision, assetName, remoteIP string, occurredAt time.Time) *ValidatedEvent {
	return &ValidatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: principalID,
			EventType:   EventLicenseValidated,
			OccurredAt:  occurredAt,
		},
		PrincipalID: principalID,
		Admitted:    decision.Admitted,
		Reason:      decision.Reason,
		AssetName:   assetName,
		RemoteIP:    remoteIP,
	}
}

// RevokedEvent is published after an admin deletes a principal's license.
type RevokedEvent struct {
	events.BaseEvent
	PrincipalID string `json:"principal_id"`
	ActorID     string `json:"actor_id"`
}

// NewRevokedEvent builds a revocation audit event.
func NewRevokedEvent(principalID, actorID string, occurredAt time.Time) *RevokedEvent {
	return &RevokedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: principalID,
			EventType:   EventLicenseRevoked,
			OccurredAt:  occurredAt,
		},
		PrincipalID: principalID,
		ActorID:     actorID,
	}
}
