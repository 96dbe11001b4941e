package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripslot/attractions-backend/internal/models"
)

func TestCreateBookingWithSlotReservation(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db.DB)

	booking := func() *models.Booking {
		return &models.Booking{
			UserID:         7,
			AttractionID:   2,
			BookingDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			NumberOfGuests: 5,
			TotalCost:      500,
		}
	}

	t.Run("Reserves slots and inserts under one transaction", func(t *testing.T) {
		b := booking()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		mock.ExpectExec(`UPDATE attractions`).
			WithArgs(5, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectCommit()

		err := repo.CreateBookingWithSlotReservation(b)
		require.NoError(t, err)
		assert.Equal(t, int64(42), b.ID)
		assert.Equal(t, models.BookingStatusRequested, b.Status)
		assert.NotEmpty(t, b.BookingReference)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when the locked row has too few slots", func(t *testing.T) {
		b := booking()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(3))
		mock.ExpectRollback()

		err := repo.CreateBookingWithSlotReservation(b)
		assert.ErrorIs(t, err, ErrInsufficientSlots)
		assert.Zero(t, b.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingWithSlotAdjustment(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db.DB)

	booking := &models.Booking{
		ID:             42,
		AttractionID:   2,
		BookingDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 5,
		TotalCost:      500,
		Status:         models.BookingStatusRequested,
	}

	t.Run("Positive delta locks and reserves", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(10))
		mock.ExpectExec(`UPDATE attractions`).
			WithArgs(3, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateBookingWithSlotAdjustment(booking, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Positive delta fails against depleted inventory", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT available_slots FROM attractions`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_slots"}).AddRow(2))
		mock.ExpectRollback()

		err := repo.UpdateBookingWithSlotAdjustment(booking, 3)
		assert.ErrorIs(t, err, ErrInsufficientSlots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Negative delta releases without locking", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE attractions`).
			WithArgs(-5, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateBookingWithSlotAdjustment(booking, -5)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Zero delta only touches the booking row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateBookingWithSlotAdjustment(booking, 0)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteBookingWithSlotRelease(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db.DB)

	booking := &models.Booking{
		ID:             42,
		AttractionID:   2,
		NumberOfGuests: 3,
		Status:         models.BookingStatusConfirmed,
	}

	t.Run("Releases held slots", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE attractions`).
			WithArgs(3, sqlmock.AnyArg(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteBookingWithSlotRelease(booking, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancelled booking releases nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteBookingWithSlotRelease(booking, 0)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRollingWindowQueries(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db.DB)

	since := time.Now().Add(-24 * time.Hour)

	t.Run("CountRequestedSince", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs(int64(7), models.BookingStatusRequested, since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountRequestedSince(7, since)
		require.NoError(t, err)
		assert.Equal(t, 5, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SumCostSince", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE`).
			WithArgs(int64(7), since).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2600.0))

		total, err := repo.SumCostSince(7, since)
		require.NoError(t, err)
		assert.Equal(t, 2600.0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CountBookingsForAttraction", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountBookingsForAttraction(2)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
