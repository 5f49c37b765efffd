package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/novaai/backend/internal/app/service/usage"
	usersvc "github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/pkg/response"
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

func userRow(id, plan string, used int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "plan", "tier", "subscription", "ai_call_usage"}).
		AddRow(id, id+"@example.com", plan, "", []byte(`{}`), used)
}

func usageRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterUsageRoutes(r.Group("/api/ai"), usage.New(db, zap.NewNop().Sugar()), nil)
	return r
}

// The desktop client sends its id as the userId query parameter with no
// Authorization header.
func TestApiCheckLimit_UserIDQueryParam(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow("user_1", "free", 2))
	r := usageRouter(t, db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ai/check-limit?userId=user_1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp UsageStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "free", resp.Plan)
	assert.Equal(t, int64(2), resp.CurrentUsage)
	assert.Equal(t, int64(5), resp.Limit)
	assert.Equal(t, int64(3), resp.Remaining)
	assert.True(t, resp.CanUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The desktop client posts {"userId": ...} as the request body.
func TestApiIncrementUsage_UserIDInBody(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow("user_1", "free", 2))
	mock.ExpectExec(`UPDATE "users" SET "ai_call_usage"`).WillReturnResult(sqlmock.NewResult(0, 1))
	r := usageRouter(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/increment-usage", strings.NewReader(`{"userId":"user_1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp UsageStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.CurrentUsage)
	assert.True(t, resp.CanUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApiIncrementUsage_QuotaExhaustedReturns429(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow("user_1", "free", 5))
	mock.ExpectExec(`UPDATE "users" SET "ai_call_usage"`).WillReturnResult(sqlmock.NewResult(0, 0))
	r := usageRouter(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/increment-usage", strings.NewReader(`{"userId":"user_1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var resp UsageStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.False(t, resp.CanUse)
	assert.Equal(t, "usage limit exceeded", resp.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApiCheckLimit_NoIdentityReturns401(t *testing.T) {
	db, mock := newMockDB(t)
	r := usageRouter(t, db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ai/check-limit", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The profile endpoint takes user_id per the web app convention.
func TestApiGetProfile_UserIDQueryParam(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRow("user_1", "plus", 10))
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterUserRoutes(r.Group("/api/v1/user"), usersvc.New(db, zap.NewNop().Sugar()), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/user/profile?user_id=user_1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp response.APIResponse[usersvc.Profile]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user_1", resp.Data.ID)
	assert.Equal(t, "plus", string(resp.Data.Plan))
	assert.Equal(t, int64(220), resp.Data.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
