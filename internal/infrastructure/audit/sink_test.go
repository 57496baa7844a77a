package audit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keygate/internal/domain/license"
	"keygate/internal/domain/quota"
	"keygate/internal/shared/config"
	"keygate/internal/shared/logger"
)

func TestSink_CanHandle(t *testing.T) {
	sink := NewSink(&config.AuditConfig{}, logger.NewLogger())

	assert.True(t, sink.CanHandle(license.EventLicenseIssued))
	assert.True(t, sink.CanHandle(license.EventLicenseValidated))
	assert.True(t, sink.CanHandle(license.EventLicenseRevoked))
	assert.True(t, sink.CanHandle(quota.EventQuotaSet))
	assert.False(t, sink.CanHandle("something.else"))
}

func TestSink_Handle(t *testing.T) {
	t.Run("without webhook only logs", func(t *testing.T) {
		sink := NewSink(&config.AuditConfig{}, logger.NewLogger())
		event := license.NewRevokedEvent("principal-1", "admin-1", time.Now().UTC())

		assert.NoError(t, sink.Handle(event))
	})

	t.Run("posts events to the webhook", func(t *testing.T) {
		received := make(chan map[string]interface{}, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var payload map[string]interface{}
			_ = json.Unmarshal(body, &payload)
			received <- payload
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		sink := NewSink(&config.AuditConfig{WebhookURL: server.URL, TimeoutSecs: 2}, logger.NewLogger())
		event := license.NewIssuedEvent("principal-1", "issuer-1", "loader", time.Now().UTC().Add(30*24*time.Hour), true, time.Now().UTC())

		require.NoError(t, sink.Handle(event))

		select {
		case payload := <-received:
			assert.Equal(t, license.EventLicenseIssued, payload["event_type"])
		case <-time.After(2 * time.Second):
			t.Fatal("webhook was not called")
		}
	})

	t.Run("webhook failure does not surface", func(t *testing.T) {
		sink := NewSink(&config.AuditConfig{WebhookURL: "http://127.0.0.1:1", TimeoutSecs: 1}, logger.NewLogger())
		event := license.NewRevokedEvent("principal-1", "admin-1", time.Now().UTC())

		assert.NoError(t, sink.Handle(event))
	})
}
