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

func newIssueUseCase(repo *fakeLicenseRepo, ledger *fakeLedger, pub *capturePublisher) *IssueLicenseUseCase {
	roles := authorization.NewDirectory([]string{"admin-1"}, []string{"issuer-1"})
	return NewIssueLicenseUseCase(
		repo, ledger, roles, pub,
		30*24*time.Hour, 3*time.Second,
		logger.NewLogger(),
	)
}

func TestIssueLicenseUseCase_Execute(t *testing.T) {
	t.Run("issuer with quota gets license and consumes one grant", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		ledger := newFakeLedger(map[string]int{"issuer-1": 2})
		pub := &capturePublisher{}
		uc := newIssueUseCase(repo, ledger, pub)

		result, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
			AssetName:   "loader",
		})
		require.NoError(t, err)

		assert.Equal(t, "principal-1", result.PrincipalID)
		assert.Len(t, result.Key, license.KeyLength)
		assert.True(t, result.QuotaBound)
		assert.WithinDuration(t, result.IssuedAt.Add(30*24*time.Hour), result.ExpiresAt, time.Second)
		assert.NotEmpty(t, result.ExpiresAtDisplay)

		remaining, _ := ledger.Remaining(context.Background(), "issuer-1")
		assert.Equal(t, 1, remaining)

		stored, err := repo.GetByPrincipal(context.Background(), "principal-1")
		require.NoError(t, err)
		assert.True(t, stored.MatchesKey(result.Key))

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, license.EventLicenseIssued, events[0].GetEventType())
	})

	t.Run("admin bypasses quota", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		ledger := newFakeLedger(nil)
		uc := newIssueUseCase(repo, ledger, &capturePublisher{})

		result, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "admin-1",
			PrincipalID: "principal-1",
		})
		require.NoError(t, err)
		assert.False(t, result.QuotaBound)

		remaining, _ := ledger.Remaining(context.Background(), "admin-1")
		assert.Equal(t, 0, remaining)
	})

	t.Run("exhausted quota denies without storing", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		ledger := newFakeLedger(map[string]int{"issuer-1": 0})
		uc := newIssueUseCase(repo, ledger, &capturePublisher{})

		_, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.Error(t, err)
		assert.True(t, errors.IsQuotaExhaustedError(err))

		_, err = repo.GetByPrincipal(context.Background(), "principal-1")
		assert.Equal(t, license.ErrLicenseNotFound, err)
	})

	t.Run("unknown actor is forbidden", func(t *testing.T) {
		uc := newIssueUseCase(newFakeLicenseRepo(), newFakeLedger(nil), &capturePublisher{})

		_, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "stranger",
			PrincipalID: "principal-1",
		})
		require.Error(t, err)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("store failure refunds the consumed grant", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		repo.upsertErr = assert.AnError
		ledger := newFakeLedger(map[string]int{"issuer-1": 1})
		uc := newIssueUseCase(repo, ledger, &capturePublisher{})

		_, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.Error(t, err)

		remaining, _ := ledger.Remaining(context.Background(), "issuer-1")
		assert.Equal(t, 1, remaining)
		assert.Equal(t, 1, ledger.increments)
	})

	t.Run("key collision surfaces as conflict, not internal", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		repo.upsertErr = errors.NewConflictError("license key already in use")
		ledger := newFakeLedger(map[string]int{"issuer-1": 1})
		uc := newIssueUseCase(repo, ledger, &capturePublisher{})

		_, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.Error(t, err)
		assert.True(t, errors.IsConflictError(err))

		remaining, _ := ledger.Remaining(context.Background(), "issuer-1")
		assert.Equal(t, 1, remaining)
	})

	t.Run("reissue overwrites the previous license", func(t *testing.T) {
		repo := newFakeLicenseRepo()
		ledger := newFakeLedger(map[string]int{"issuer-1": 5})
		uc := newIssueUseCase(repo, ledger, &capturePublisher{})

		first, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.NoError(t, err)

		second, err := uc.Execute(context.Background(), IssueLicenseRequest{
			ActorID:     "issuer-1",
			PrincipalID: "principal-1",
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.Key, second.Key)

		stored, err := repo.GetByPrincipal(context.Background(), "principal-1")
		require.NoError(t, err)
		assert.False(t, stored.MatchesKey(first.Key))
		assert.True(t, stored.MatchesKey(second.Key))
	})

	t.Run("missing principal is rejected", func(t *testing.T) {
		uc := newIssueUseCase(newFakeLicenseRepo(), newFakeLedger(nil), &capturePublisher{})

		_, err := uc.Execute(context.Background(), IssueLicenseRequest{ActorID: "admin-1"})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}
