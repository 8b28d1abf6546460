package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{TranslateError: true, SkipDefaultTransaction: true})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return mock
}

type recordingInvalidator struct {
	userIDs []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uint) error {
	r.userIDs = append(r.userIDs, userID)
	return nil
}

func grantRequest(id, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id}}
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/users/"+id+"/credits", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestGrantCreditsInvalidatesEntitlementSnapshot(t *testing.T) {
	mock := newMockDB(t)

	inv := &recordingInvalidator{}
	httputil.SetEntitlementCache(inv)
	t.Cleanup(func() { httputil.SetEntitlementCache(nil) })

	mock.ExpectExec(`UPDATE users SET credits = credits \+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, w := grantRequest("7", `{"credits": 5}`)
	GrantCredits(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{7}, inv.userIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantCreditsRejectsNegativeBalanceWithoutInvalidating(t *testing.T) {
	mock := newMockDB(t)

	inv := &recordingInvalidator{}
	httputil.SetEntitlementCache(inv)
	t.Cleanup(func() { httputil.SetEntitlementCache(nil) })

	// the guarded update matches no row when the balance would go negative
	mock.ExpectExec(`UPDATE users SET credits = credits \+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, w := grantRequest("7", `{"credits": -50}`)
	GrantCredits(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, inv.userIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantCreditsRejectsNonNumericUserID(t *testing.T) {
	newMockDB(t)

	c, w := grantRequest("abc", `{"credits": 5}`)
	GrantCredits(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
