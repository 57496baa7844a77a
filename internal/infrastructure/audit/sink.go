package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/domain/quota"
	"keygate/internal/domain/shared/events"
	"keygate/internal/shared/config"
	"keygate/internal/shared/logger"
)

// Sink records lifecycle events for the audit trail. Every event becomes a
// structured log line; when a webhook URL is configured the event is also
// posted as JSON. Delivery is best effort and never blocks the caller.
type Sink struct {
	webhookURL string
	client     *http.Client
	logger     logger.Interface
}

// NewSink builds an audit sink from configuration.
func NewSink(cfg *config.AuditConfig, log logger.Interface) *Sink {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Register subscribes the sink to every audited event type.
func (s *Sink) Register(dispatcher events.EventDispatcher) error {
	for _, eventType := range []string{
		license.EventLicenseIssued,
		license.EventLicenseValidated,
		license.EventLicenseRevoked,
		quota.EventQuotaSet,
	} {
		if err := dispatcher.Subscribe(eventType, s); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

// CanHandle reports whether the sink audits the given event type.
func (s *Sink) CanHandle(eventType string) bool {
	switch eventType {
	case license.EventLicenseIssued, license.EventLicenseValidated,
		license.EventLicenseRevoked, quota.EventQuotaSet:
		return true
	}
	return false
}

// Handle records one event. Runs on the dispatcher's worker goroutine.
func (s *Sink) Handle(event events.DomainEvent) error {
	s.logger.Infow("audit",
		"event_type", event.GetEventType(),
		"aggregate_id", event.GetAggregateID(),
		"occurred_at", event.GetOccurredAt(),
	)

	if s.webhookURL == "" {
		return nil
	}
	s.post(event)
	return nil
}

func (s *Sink) post(event events.DomainEvent) {
	payload, err := json.Marshal(map[string]interface{}{
		"event_type":  event.GetEventType(),
		"occurred_at": event.GetOccurredAt().Format(time.RFC3339),
		"event":       event,
	})
	if err != nil {
		s.logger.Warnw("audit payload marshal failed", "event_type", event.GetEventType(), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		s.logger.Warnw("audit webhook request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warnw("audit webhook delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warnw("audit webhook rejected event",
			"event_type", event.GetEventType(),
			"status", resp.StatusCode,
		)
	}
}
