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
	"keygate/internal/domain/license"
	"keygate/internal/shared/logger"
)

const testKey = "ABCD1234EFGH5678"

type memoryLicenseRepo struct {
	mu       sync.Mutex
	licenses map[string]*license.License
}

func newMemoryLicenseRepo() *memoryLicenseRepo {
	return &memoryLicenseRepo{licenses: make(map[string]*license.License)}
}

func (r *memoryLicenseRepo) Upsert(_ context.Context, lic *license.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.licenses[lic.PrincipalID()] = lic
	return nil
}

func (r *memoryLicenseRepo) GetByPrincipal(_ context.Context, principalID string) (*license.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lic, ok := r.licenses[principalID]
	if !ok {
		return nil, license.ErrLicenseNotFound
	}
	return lic, nil
}

func (r *memoryLicenseRepo) Delete(_ context.Context, principalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.licenses[principalID]
	delete(r.licenses, principalID)
	return ok, nil
}

func (r *memoryLicenseRepo) ListExpired(_ context.Context, asOf time.Time) ([]*license.License, error) {
	return nil, nil
}

type staticLocator map[string]string

func (l staticLocator) Resolve(name string) (string, bool) {
	ref, ok := l[name]
	return ref, ok
}

func setupValidateServer(t *testing.T, repo *memoryLicenseRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	locator := staticLocator{
		"":       "https://assets.example.com/loader.lua",
		"loader": "https://assets.example.com/loader.lua",
	}
	uc := licenseUsecases.NewValidateLicenseUseCase(repo, locator, nil, 5*time.Second, logger.NewLogger())
	handler := NewValidateHandler(uc, logger.NewLogger())

	engine := gin.New()
	engine.POST("/get_script", handler.Validate)
	return engine
}

func postValidate(t *testing.T, engine *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/get_script", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func seedValidLicense(t *testing.T, repo *memoryLicenseRepo, principalID string) {
	t.Helper()
	lic, err := license.NewLicense(principalID, testKey, time.Now().UTC(), 30*24*time.Hour, "")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), lic))
}

func TestValidateHandler_Validate(t *testing.T) {
	t.Run("valid key gets the asset reference in plain text", func(t *testing.T) {
		repo := newMemoryLicenseRepo()
		seedValidLicense(t, repo, "principal-1")
		engine := setupValidateServer(t, repo)

		rec := postValidate(t, engine, map[string]string{
			"user_id":     "principal-1",
			"license_key": testKey,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://assets.example.com/loader.lua", rec.Body.String())
	})

	t.Run("missing fields get 400 INVALID", func(t *testing.T) {
		engine := setupValidateServer(t, newMemoryLicenseRepo())

		rec := postValidate(t, engine, map[string]string{"user_id": "principal-1"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})

	t.Run("malformed body gets 400 INVALID", func(t *testing.T) {
		engine := setupValidateServer(t, newMemoryLicenseRepo())

		req := httptest.NewRequest(http.MethodPost, "/get_script", bytes.NewReader([]byte("not json")))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})

	t.Run("unknown principal gets 403 INVALID", func(t *testing.T) {
		engine := setupValidateServer(t, newMemoryLicenseRepo())

		rec := postValidate(t, engine, map[string]string{
			"user_id":     "nobody",
			"license_key": testKey,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})

	t.Run("wrong key gets 403 INVALID", func(t *testing.T) {
		repo := newMemoryLicenseRepo()
		seedValidLicense(t, repo, "principal-1")
		engine := setupValidateServer(t, repo)

		rec := postValidate(t, engine, map[string]string{
			"user_id":     "principal-1",
			"license_key": "WRONG1234WRONG12",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})

	t.Run("expired license gets 403 INVALID", func(t *testing.T) {
		repo := newMemoryLicenseRepo()
		lic, err := license.NewLicense("principal-1", testKey, time.Now().UTC().Add(-2*time.Hour), time.Hour, "")
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(context.Background(), lic))
		engine := setupValidateServer(t, repo)

		rec := postValidate(t, engine, map[string]string{
			"user_id":     "principal-1",
			"license_key": testKey,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})

	t.Run("unresolvable asset gets 404 INVALID", func(t *testing.T) {
		repo := newMemoryLicenseRepo()
		lic, err := license.NewLicense("principal-1", testKey, time.Now().UTC(), 30*24*time.Hour, "premium")
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(context.Background(), lic))
		engine := setupValidateServer(t, repo)

		rec := postValidate(t, engine, map[string]string{
			"user_id":        "principal-1",
			"license_key":    testKey,
			"script_request": "premium",
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "INVALID", rec.Body.String())
	})
}
