package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripslot/attractions-backend/internal/models"
)

func newBookingService(deps *testDeps) *BookingService {
	guard := NewFraudGuardService(deps.bookingRepo, deps.userRepo, nil, deps.logger, DefaultFraudGuardConfig())
	return NewBookingService(deps.userRepo, deps.attractionRepo, deps.bookingRepo, guard, nil, deps.logger, DefaultBookingLimitsConfig())
}

func expectUser(deps *testDeps, id int64) {
	now := time.Now()
	deps.mock.ExpectQuery(`SELECT (.+) FROM users`).
		WillReturnRows(sqlmock.NewRows(userRows).AddRow(
			id, "Jane Doe", "jane@example.com", "0412345678", "hashed",
			false, false, 0, now, now,
		))
}

func expectCleanFraudChecks(deps *testDeps) {
	deps.mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_attempts"}).AddRow(1))
	deps.mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	deps.mock.ExpectQuery(`SELECT COALESCE`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))
}

func expectAttraction(deps *testDeps, id int64, price float64, slots int) {
	now := time.Now()
	deps.mock.ExpectQuery(`SELECT (.+) FROM attractions`).
		WillReturnRows(sqlmock.NewRows(attractionRows).AddRow(
			id, "Sky Tower", "Observation deck", "Downtown", "0412000000",
			"info@skytower.example", "9-5", price, slots, nil, now, now,
		))
}

func validDate() string {
	return models.FormatBookingDate(time.Now().UTC().AddDate(0, 0, 30))
}

func TestCreateBooking(t *testing.T) {
	t.Run("Unknown user is rejected before any gate", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnRows(sqlmock.NewRows(userRows))

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 1}
		_, err := svc.CreateBooking(99, req, false, RequestMeta{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Party of 21 is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 21}
		_, err := svc.CreateBooking(7, req, true, RequestMeta{})
		assert.ErrorIs(t, err, ErrGuestLimit)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Malformed date is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: "2026-09-10", NumberOfGuests: 2}
		_, err := svc.CreateBooking(7, req, true, RequestMeta{})
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})

	t.Run("Date past the booking window is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)

		tooFar := models.FormatBookingDate(time.Now().UTC().AddDate(0, 0, 181))
		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: tooFar, NumberOfGuests: 2}
		_, err := svc.CreateBooking(7, req, true, RequestMeta{})
		assert.ErrorIs(t, err, ErrDateOutOfRange)
	})

	t.Run("Date in the past is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)

		yesterday := models.FormatBookingDate(time.Now().UTC().AddDate(0, 0, -1))
		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: yesterday, NumberOfGuests: 2}
		_, err := svc.CreateBooking(7, req, true, RequestMeta{})
		assert.ErrorIs(t, err, ErrDateOutOfRange)
	})

	t.Run("Three guests against two slots leaves inventory untouched", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)
		expectAttraction(deps, 2, 100, 2)

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 3}
		_, err := svc.CreateBooking(7, req, true, RequestMeta{})
		assert.ErrorIs(t, err, ErrInsufficientSlots)

		// No transaction was ever opened
		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Cost at the ceiling needs an admin", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)
		expectCleanFraudChecks(deps)
		expectAttraction(deps, 2, 500, 10)

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 2}
		_, err := svc.CreateBooking(7, req, false, RequestMeta{})
		assert.ErrorIs(t, err, ErrCostCeiling)
	})

	t.Run("Bypass admits a booking over the ceiling", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)
		expectAttraction(deps, 2, 500, 10)

		deps.mock.ExpectBegin()
		deps.mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		deps.mock.ExpectExec(`UPDATE attractions`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		deps.mock.ExpectCommit()

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 3}
		booking, err := svc.CreateBooking(7, req, true, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, 1500.0, booking.TotalCost)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Five guests at $100 admits a $500 Requested booking", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		expectUser(deps, 7)
		expectCleanFraudChecks(deps)
		expectAttraction(deps, 2, 100, 10)

		deps.mock.ExpectBegin()
		deps.mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		deps.mock.ExpectExec(`UPDATE attractions`).
			WithArgs(5, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		deps.mock.ExpectCommit()

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 5}
		booking, err := svc.CreateBooking(7, req, false, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, 500.0, booking.TotalCost)
		assert.Equal(t, models.BookingStatusRequested, booking.Status)
		assert.Equal(t, int64(42), booking.ID)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Locked account is rejected with the lockout error", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		now := time.Now()
		deps.mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnRows(sqlmock.NewRows(userRows).AddRow(
				7, "Jane Doe", "jane@example.com", "0412345678", "hashed",
				false, true, 6, now, now,
			))
		deps.mock.ExpectQuery(`UPDATE users`).
			WillReturnRows(sqlmock.NewRows([]string{"booking_attempts"}).AddRow(7))

		req := &models.CreateBookingRequest{AttractionID: 2, BookingDate: validDate(), NumberOfGuests: 1}
		_, err := svc.CreateBooking(7, req, false, RequestMeta{})
		assert.ErrorIs(t, err, ErrAccountLocked)
	})
}

func TestUpdateBooking(t *testing.T) {
	bookingRow := func(guests int, status models.BookingStatus) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows([]string{
			"id", "booking_reference", "user_id", "attraction_id", "booking_date",
			"number_of_guests", "total_cost", "status", "created_at", "updated_at",
		}).AddRow(
			42, "ref-42", 7, 2, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			guests, float64(guests)*100, status, now, now,
		)
	}

	t.Run("Growing the party reserves the difference", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(2, models.BookingStatusRequested))
		expectAttraction(deps, 2, 100, 10)

		deps.mock.ExpectBegin()
		deps.mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		deps.mock.ExpectExec(`UPDATE attractions`).
			WithArgs(3, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectCommit()

		guests := 5
		booking, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{NumberOfGuests: &guests})
		require.NoError(t, err)
		assert.Equal(t, 5, booking.NumberOfGuests)
		assert.Equal(t, 500.0, booking.TotalCost)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Cancelling releases every held slot", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(4, models.BookingStatusConfirmed))

		deps.mock.ExpectBegin()
		deps.mock.ExpectExec(`UPDATE attractions`).
			WithArgs(-4, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectCommit()

		status := string(models.BookingStatusCancelled)
		booking, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.Status)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Reviving a cancelled booking re-reserves slots", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(4, models.BookingStatusCancelled))

		deps.mock.ExpectBegin()
		deps.mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		deps.mock.ExpectExec(`UPDATE attractions`).
			WithArgs(4, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectCommit()

		status := string(models.BookingStatusConfirmed)
		booking, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Zero guests is rejected with a client error", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(2, models.BookingStatusRequested))

		guests := 0
		_, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrGuestCountInvalid)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Growing past the party limit is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(2, models.BookingStatusRequested))

		guests := 25
		_, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrGuestLimit)

		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Unknown status is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(2, models.BookingStatusRequested))

		status := "Pending"
		_, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("Growing past the inventory is rejected", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(2, models.BookingStatusRequested))
		expectAttraction(deps, 2, 100, 1)

		deps.mock.ExpectBegin()
		deps.mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(1))
		deps.mock.ExpectRollback()

		guests := 5
		_, err := svc.UpdateBooking(42, &models.UpdateBookingRequest{NumberOfGuests: &guests})
		assert.ErrorIs(t, err, ErrInsufficientSlotsForUpdate)
	})
}

func TestDeleteBooking(t *testing.T) {
	bookingRow := func(guests int, status models.BookingStatus) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows([]string{
			"id", "booking_reference", "user_id", "attraction_id", "booking_date",
			"number_of_guests", "total_cost", "status", "created_at", "updated_at",
		}).AddRow(
			42, "ref-42", 7, 2, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			guests, float64(guests)*100, status, now, now,
		)
	}

	t.Run("Deleting a confirmed booking restores its slots", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(3, models.BookingStatusConfirmed))

		deps.mock.ExpectBegin()
		deps.mock.ExpectExec(`UPDATE attractions`).
			WithArgs(3, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectExec(`DELETE FROM bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectCommit()

		err := svc.DeleteBooking(42)
		assert.NoError(t, err)
		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Deleting a cancelled booking restores nothing", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(bookingRow(3, models.BookingStatusCancelled))

		deps.mock.ExpectBegin()
		deps.mock.ExpectExec(`DELETE FROM bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		deps.mock.ExpectCommit()

		err := svc.DeleteBooking(42)
		assert.NoError(t, err)
		assert.NoError(t, deps.mock.ExpectationsWereMet())
	})

	t.Run("Missing booking returns not found", func(t *testing.T) {
		deps := newTestDeps(t)
		svc := newBookingService(deps)

		deps.mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := svc.DeleteBooking(99)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
