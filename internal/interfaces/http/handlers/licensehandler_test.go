package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licenseUsecases "keygate/internal/application/license/usecases"
	quotaUsecases "keygate/internal/application/quota/usecases"
	"keygate/internal/infrastructure/auth"
	"keygate/internal/interfaces/http/middleware"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/logger"
)

type memoryLedger struct {
	mu        sync.Mutex
	remaining map[string]int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{remaining: make(map[string]int)}
}

func (l *memoryLedger) Remaining(_ context.Context, issuerID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining[issuerID], nil
}

func (l *memoryLedger) Decrement(_ context.Context, issuerID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.remaining[issuerID] <= 0 {
		return false, nil
	}
	l.remaining[issuerID]--
	return true, nil
}

func (l *memoryLedger) Increment(_ context.Context, issuerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[issuerID]++
	return nil
}

func (l *memoryLedger) Set(_ context.Context, issuerID string, remaining int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[issuerID] = remaining
	return nil
}

type commandAPIServer struct {
	engine *gin.Engine
	jwt    *auth.JWTService
	repo   *memoryLicenseRepo
	ledger *memoryLedger
}

func setupCommandAPI(t *testing.T) *commandAPIServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger()
	repo := newMemoryLicenseRepo()
	ledger := newMemoryLedger()
	roles := authorization.NewDirectory([]string{"admin-1"}, []string{"issuer-1"})

	issueUC := licenseUsecases.NewIssueLicenseUseCase(
		repo, ledger, roles, nil, 30*24*time.Hour, 3*time.Second, log)
	revokeUC := licenseUsecases.NewRevokeLicenseUseCase(repo, roles, nil, 3*time.Second, log)
	getUC := licenseUsecases.NewGetLicenseUseCase(repo, roles, 3*time.Second, log)
	setQuotaUC := quotaUsecases.NewSetQuotaUseCase(ledger, roles, nil, 3*time.Second, log)
	getQuotaUC := quotaUsecases.NewGetQuotaUseCase(ledger, roles, 3*time.Second, log)

	jwtService := auth.NewJWTService("test-secret", 1)
	authMW := middleware.NewAuthMiddleware(jwtService, log)

	licenseHandler := NewLicenseHandler(issueUC, revokeUC, getUC, log)
	quotaHandler := NewQuotaHandler(setQuotaUC, getQuotaUC, log)

	engine := gin.New()
	api := engine.Group("/api")
	api.Use(authMW.RequireAuth())
	api.POST("/licenses", licenseHandler.Issue)
	api.GET("/licenses/:principal_id", licenseHandler.Get)
	api.DELETE("/licenses/:principal_id", licenseHandler.Revoke)
	api.PUT("/quotas/:issuer_id", quotaHandler.Set)
	api.GET("/quotas/:issuer_id", quotaHandler.Get)

	return &commandAPIServer{engine: engine, jwt: jwtService, repo: repo, ledger: ledger}
}

func (s *commandAPIServer) do(t *testing.T, method, path, actorID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		token, err := s.jwt.Generate(actorID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestCommandAPI_Auth(t *testing.T) {
	server := setupCommandAPI(t)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rec := server.do(t, http.MethodPost, "/api/licenses", "", gin.H{"principal_id": "p-1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/quotas/issuer-1", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		server.engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// A sales issuer with a single grant: set quota, issue, get throttled on the
// second issue, and watch the counter hit zero.
func TestCommandAPI_SingleGrantLifecycle(t *testing.T) {
	server := setupCommandAPI(t)

	rec := server.do(t, http.MethodPut, "/api/quotas/issuer-1", "admin-1", gin.H{"remaining_grants": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, http.MethodPost, "/api/licenses", "issuer-1", gin.H{"principal_id": "principal-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var issued struct {
		Data struct {
			PrincipalID string `json:"principal_id"`
			Key         string `json:"key"`
			QuotaBound  bool   `json:"quota_bound"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	assert.Equal(t, "principal-1", issued.Data.PrincipalID)
	assert.Len(t, issued.Data.Key, 16)
	assert.True(t, issued.Data.QuotaBound)

	rec = server.do(t, http.MethodPost, "/api/licenses", "issuer-1", gin.H{"principal_id": "principal-2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/quotas/issuer-1", "issuer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quota struct {
		Data struct {
			RemainingGrants int `json:"remaining_grants"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quota))
	assert.Equal(t, 0, quota.Data.RemainingGrants)

	// The issued key admits the recipient on the public surface.
	validateEngine := setupValidateServer(t, server.repo)
	vrec := postValidate(t, validateEngine, map[string]string{
		"user_id":     "principal-1",
		"license_key": issued.Data.Key,
	})
	require.Equal(t, http.StatusOK, vrec.Code)
	assert.Equal(t, "https://assets.example.com/loader.lua", vrec.Body.String())
}

func TestCommandAPI_GetAndRevoke(t *testing.T) {
	server := setupCommandAPI(t)

	rec := server.do(t, http.MethodPost, "/api/licenses", "admin-1", gin.H{"principal_id": "principal-1", "asset_name": "loader"})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("get returns metadata without the key", func(t *testing.T) {
		rec := server.do(t, http.MethodGet, "/api/licenses/principal-1", "issuer-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		data := payload["data"].(map[string]interface{})
		assert.Equal(t, "principal-1", data["principal_id"])
		assert.NotContains(t, data, "key")
	})

	t.Run("issuer cannot revoke", func(t *testing.T) {
		rec := server.do(t, http.MethodDelete, "/api/licenses/principal-1", "issuer-1", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin revokes and the license is gone", func(t *testing.T) {
		rec := server.do(t, http.MethodDelete, "/api/licenses/principal-1", "admin-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = server.do(t, http.MethodGet, "/api/licenses/principal-1", "admin-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
