package stripewebhooks

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lingua-app/database"
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

func webhookContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func packSession() *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:          "cs_test_123",
		AmountTotal: 1900,
		Metadata:    map[string]string{"user_id": "7", "plan_id": "4"},
	}
}

func expectPackPlanLookup(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "stripe_price_id", "interval", "credits"}).
		AddRow(4, "Starter Pack", "credit_pack", "price_pack_10", "", 10)
	mock.ExpectQuery(`SELECT (.+) FROM "plans"`).WillReturnRows(rows)
}

func TestFulfillCreditPackCommitsPaymentAndGrantTogether(t *testing.T) {
	mock := newMockDB(t)

	expectPackPlanLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE users SET credits = credits \+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, fulfillCreditPack(webhookContext(), packSession()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed credit grant must roll the payment row back too, so Stripe's
// redelivery can retry the whole fulfillment instead of hitting the dedup
// key of a half-finished one.
func TestFulfillCreditPackGrantFailureRollsBackPaymentRow(t *testing.T) {
	mock := newMockDB(t)

	expectPackPlanLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE users SET credits = credits \+`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := fulfillCreditPack(webhookContext(), packSession())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfillCreditPackRedeliveryIsNoOp(t *testing.T) {
	mock := newMockDB(t)

	expectPackPlanLookup(mock)
	mock.ExpectBegin()
	// unique stripe_session_id: the event was already fulfilled
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	require.NoError(t, fulfillCreditPack(webhookContext(), packSession()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfillCreditPackRejectsMissingMetadata(t *testing.T) {
	newMockDB(t)

	s := packSession()
	s.Metadata = map[string]string{"plan_id": "4"}
	s.ClientReferenceID = ""
	assert.Error(t, fulfillCreditPack(webhookContext(), s))

	s = packSession()
	delete(s.Metadata, "plan_id")
	assert.Error(t, fulfillCreditPack(webhookContext(), s))
}
