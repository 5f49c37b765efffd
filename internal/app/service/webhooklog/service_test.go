package webhooklog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return New(db, zap.NewNop().Sugar()), mock
}

func TestMarkProcessed_FlagsMostRecentEntry(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectExec(`UPDATE "webhook_logs"`).WillReturnResult(sqlmock.NewResult(0, 1))

	svc.MarkProcessed(context.Background(), "pay_key_1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The audit entry is inserted asynchronously; when the first update
// finds nothing it must try again once the insert has landed.
func TestMarkProcessed_RetriesUntilAuditEntryLands(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectExec(`UPDATE "webhook_logs"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "webhook_logs"`).WillReturnResult(sqlmock.NewResult(0, 1))

	svc.MarkProcessed(context.Background(), "pay_key_1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessed_EmptyKeyIsNoOp(t *testing.T) {
	svc, mock := newTestService(t)

	svc.MarkProcessed(context.Background(), "")
	assert.NoError(t, mock.ExpectationsWereMet())
}
