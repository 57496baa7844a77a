package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keygate/internal/domain/license"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

func newRevokeUseCase(repo *fakeLicenseRepo, pub *capturePublisher) *RevokeLicenseUseCase {
	roles := authorization.NewDirectory([]string{"admin-1"}, []string{"issuer-1"})
	return NewRevokeLicenseUseCase(repo, roles, pub, 3*time.Second, logger.NewLogger())
}

func TestRevokeLicenseUseCase_Execute(t *testing.T) {
	t.Run("admin revokes an existing license", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		seedLicense(t, repo, "principal-1", 30*24*time.Hour, "")
		pub := &capturePublisher{}
		uc := newRevokeUseCase(repo, pub)

		err := uc.Execute(context.Background(), RevokeLicenseRequest{
			ActorID:     "admin-1",
			PrincipalID: "principal-1",
		})
		require.NoError(t, err)

		_, err = repo.GetByPrincipal(context.Background(), "principal-1")
		assert.Equal(t, license.ErrLicenseNotFound, err)

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, license.EventLicenseRevoked, events[0].GetEventType())
	})

	t.Run("issuer cannot revoke", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		seedLicense(t, repo, "principal-1", 30*24*time.Hour, "")
		uc := newRevokeUseCase(repo, &capturePublisher{})

		err := uc.Execute(context.Background(), RevokeLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))

		_, err = repo.GetByPrincipal(context.Background(), "principal-1")
		assert.NoError(t, err)
	})

	t.Run("revoking an absent license reports not found", func(t *testing.T) {
		uc := newRevokeUseCase(newFakeLicenseRepo(), &capturePublisher{})

		err := uc.Execute(context.Background(), RevokeLicenseRequest{
			ActorID:     "admin-1",
			PrincipalID: "nobody",
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestPurgeExpiredLicensesUseCase_Execute(t *testing.T) {
	repo := newFakeLicenseRepo()
	seedLicense(t, repo, "expired-1", time.Minute, "")
	seedLicense(t, repo, "active-1", 30*24*time.Hour, "")

	uc := NewPurgeExpiredLicensesUseCase(repo, 0, logger.NewLogger())
	purged, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = repo.GetByPrincipal(context.Background(), "expired-1")
	assert.Equal(t, license.ErrLicenseNotFound, err)
	_, err = repo.GetByPrincipal(context.Background(), "active-1")
	assert.NoError(t, err)
}
