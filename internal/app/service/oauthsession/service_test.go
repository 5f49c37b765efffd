package oauthsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/apperr"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return New(db, zap.NewNop().Sugar()), mock
}

func sessionColumns() []string {
	return []string{"id", "status", "uid", "email", "display_name", "photo_url", "handle", "plan", "id_token", "refresh_token", "created_at", "expires_at"}
}

func sessionRow(status models.OAuthSessionStatus, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(sessionColumns()).
		AddRow("sess_1", status, "user_1", "user_1@example.com", "User One", "", "", "plus", "id-token", "refresh-token", time.Now(), expiresAt)
}

func TestConsume_PendingKeepsWaiting(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusPending, time.Now().Add(5*time.Minute)))

	identity, err := svc.Consume(context.Background(), "sess_1")
	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_CompletedDeliversIdentity(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusCompleted, time.Now().Add(5*time.Minute)))
	mock.ExpectExec(`DELETE FROM "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))

	identity, err := svc.Consume(context.Background(), "sess_1")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user_1", identity.UID)
	assert.Equal(t, "plus", identity.Plan)
	assert.Equal(t, "id-token", identity.IDToken)
	assert.Equal(t, "refresh-token", identity.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A second reader that loses the conditional delete must not receive the
// identity a second time.
func TestConsume_RacedDeleteReturnsNotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusCompleted, time.Now().Add(5*time.Minute)))
	mock.ExpectExec(`DELETE FROM "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 0))

	identity, err := svc.Consume(context.Background(), "sess_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Nil(t, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// After a successful consume the row is gone, so the next poll sees
// not-found.
func TestConsume_AlreadyConsumedReturnsNotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sqlmock.NewRows(sessionColumns()))

	identity, err := svc.Consume(context.Background(), "sess_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Nil(t, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Reading an expired session reports expiry and deletes the record.
func TestConsume_ExpiredDeletesSession(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusCompleted, time.Now().Add(-time.Minute)))
	mock.ExpectExec(`DELETE FROM "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))

	identity, err := svc.Consume(context.Background(), "sess_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrExpired))
	assert.Nil(t, identity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_PendingSession(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusPending, time.Now().Add(5*time.Minute)))
	mock.ExpectExec(`UPDATE "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Complete(context.Background(), "sess_1", &CompleteInput{UID: "user_1", Plan: "standard"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_NotPendingReturnsNotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusCompleted, time.Now().Add(5*time.Minute)))
	mock.ExpectExec(`UPDATE "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Complete(context.Background(), "sess_1", &CompleteInput{UID: "user_1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_ExpiredDeletesSession(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT \* FROM "oauth_sessions"`).
		WillReturnRows(sessionRow(models.OAuthSessionStatusPending, time.Now().Add(-time.Minute)))
	mock.ExpectExec(`DELETE FROM "oauth_sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Complete(context.Background(), "sess_1", &CompleteInput{UID: "user_1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrExpired))
	assert.NoError(t, mock.ExpectationsWereMet())
}
