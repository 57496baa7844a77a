package quota

import (
	"time"

	"keygate/internal/domain/shared/events"
)

// EventQuotaSet is emitted when an administrator resets an issuer's counter.
const EventQuotaSet = "quota.set"

// SetEvent records a quota reset for the audit trail.
type SetEvent struct {
	events.BaseEvent
	IssuerID        string `json:"issuer_id"`
	ActorID         string `json:"actor_id"`
	RemainingGrants int    `json:"remaining_grants"`
}

// NewSetEvent builds a quota reset audit event.
func NewSetEvent(issuerID, actorID string, remainingGrants int, occurredAt time.Time) *SetEvent {
	return &SetEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: issuerID,
			EventType:   EventQuotaSet,
			OccurredAt:  occurredAt,
		},
		IssuerID:        issuerID,
		ActorID:         actorID,
		RemainingGrants: remainingGrants,
	}
}
