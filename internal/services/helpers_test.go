package services

import (
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tripslot/attractions-backend/internal/database"
)

// testDeps bundles sqlmock-backed repositories for service tests
type testDeps struct {
	mock           sqlmock.Sqlmock
	userRepo       *database.UserRepository
	attractionRepo *database.AttractionRepository
	bookingRepo    *database.BookingRepository
	logger         *logrus.Logger
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	wrapped := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &testDeps{
		mock:           mock,
		userRepo:       database.NewUserRepository(wrapped),
		attractionRepo: database.NewAttractionRepository(wrapped),
		bookingRepo:    database.NewBookingRepository(sqlxDB),
		logger:         logger,
	}
}

var userRows = []string{
	"id", "name", "email", "phone", "password", "is_admin", "is_locked",
	"booking_attempts", "created_at", "updated_at",
}

var attractionRows = []string{
	"id", "name", "description", "location", "contact_phone", "contact_email",
	"opening_hours", "ticket_price", "available_slots", "average_rating",
	"created_at", "updated_at",
}
