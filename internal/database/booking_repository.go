package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tripslot/attractions-backend/internal/models"
)

// BookingRepository handles booking database operations. It takes the
// concrete sqlx handle rather than the DB interface because slot
// accounting requires transactions with row locks.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

const bookingColumns = `id, booking_reference, user_id, attraction_id,
	       booking_date, number_of_guests, total_cost, status,
	       created_at, updated_at`

// CreateBookingWithSlotReservation atomically re-checks availability under
// a row lock, decrements the attraction's slots and inserts the booking.
// The availability check performed before pricing is advisory only; this
// locked re-check is what prevents two concurrent bookings from both
// claiming the last slots.
func (r *BookingRepository) CreateBookingWithSlotReservation(booking *models.Booking) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var availableSlots int
	lockQuery := `SELECT available_slots FROM attractions WHERE id = $1 FOR UPDATE`
	if err := tx.Get(&availableSlots, lockQuery, booking.AttractionID); err != nil {
		return fmt.Errorf("failed to lock attraction row: %w", err)
	}

	if availableSlots < booking.NumberOfGuests {
		return ErrInsufficientSlots
	}

	updateQuery := `
		UPDATE attractions
		SET available_slots = available_slots - $1,
		    updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.Exec(updateQuery, booking.NumberOfGuests, time.Now(), booking.AttractionID); err != nil {
		return fmt.Errorf("failed to reserve slots: %w", err)
	}

	booking.BookingReference = uuid.New().String()
	booking.Status = models.BookingStatusRequested
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	insertQuery := `
		INSERT INTO bookings (
			booking_reference, user_id, attraction_id, booking_date,
			number_of_guests, total_cost, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRow(
		insertQuery,
		booking.BookingReference,
		booking.UserID,
		booking.AttractionID,
		booking.BookingDate,
		booking.NumberOfGuests,
		booking.TotalCost,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

// GetBookingByID retrieves a booking by ID. Returns nil without error when
// the booking does not exist.
func (r *BookingRepository) GetBookingByID(id int64) (*models.Booking, error) {
	var booking models.Booking

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	err := r.db.Get(&booking, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking by ID: %w", err)
	}

	return &booking, nil
}

// GetBookingsByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetBookingsByUserID(userID int64) ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&bookings, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by user ID: %w", err)
	}

	return bookings, nil
}

// ListBookings retrieves all bookings, newest first
func (r *BookingRepository) ListBookings() ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
	`

	err := r.db.Select(&bookings, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// UpdateBookingWithSlotAdjustment persists the edited booking fields and
// applies slotDelta to the attraction's inventory in the same transaction.
// A positive slotDelta reserves additional slots under a row lock; a
// negative one releases slots. CreatedAt is never touched so the fraud
// guard's rolling windows stay honest.
func (r *BookingRepository) UpdateBookingWithSlotAdjustment(booking *models.Booking, slotDelta int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if slotDelta > 0 {
		var availableSlots int
		lockQuery := `SELECT available_slots FROM attractions WHERE id = $1 FOR UPDATE`
		if err := tx.Get(&availableSlots, lockQuery, booking.AttractionID); err != nil {
			return fmt.Errorf("failed to lock attraction row: %w", err)
		}
		if availableSlots < slotDelta {
			return ErrInsufficientSlots
		}
	}

	if slotDelta != 0 {
		adjustQuery := `
			UPDATE attractions
			SET available_slots = available_slots - $1,
			    updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.Exec(adjustQuery, slotDelta, time.Now(), booking.AttractionID); err != nil {
			return fmt.Errorf("failed to adjust slots: %w", err)
		}
	}

	booking.UpdatedAt = time.Now()

	updateQuery := `
		UPDATE bookings
		SET booking_date = $1,
		    number_of_guests = $2,
		    total_cost = $3,
		    status = $4,
		    updated_at = $5
		WHERE id = $6
	`
	result, err := tx.Exec(
		updateQuery,
		booking.BookingDate,
		booking.NumberOfGuests,
		booking.TotalCost,
		booking.Status,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

// DeleteBookingWithSlotRelease removes a booking and returns releaseSlots
// to the attraction's inventory in the same transaction. Pass zero for
// bookings that hold no slots (already cancelled).
func (r *BookingRepository) DeleteBookingWithSlotRelease(booking *models.Booking, releaseSlots int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if releaseSlots > 0 {
		releaseQuery := `
			UPDATE attractions
			SET available_slots = available_slots + $1,
			    updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.Exec(releaseQuery, releaseSlots, time.Now(), booking.AttractionID); err != nil {
			return fmt.Errorf("failed to release slots: %w", err)
		}
	}

	result, err := tx.Exec(`DELETE FROM bookings WHERE id = $1`, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

// CountRequestedSince counts a user's Requested bookings created after the
// given instant. Drives the fraud guard's frequency check.
func (r *BookingRepository) CountRequestedSince(userID int64, since time.Time) (int, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE user_id = $1
		  AND status = $2
		  AND created_at >= $3
	`

	err := r.db.QueryRow(query, userID, models.BookingStatusRequested, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count requested bookings: %w", err)
	}

	return count, nil
}

// SumCostSince sums a user's booking spend created after the given
// instant, across all statuses. Drives the fraud guard's spend check.
func (r *BookingRepository) SumCostSince(userID int64, since time.Time) (float64, error) {
	var total float64

	query := `
		SELECT COALESCE(SUM(total_cost), 0)
		FROM bookings
		WHERE user_id = $1
		  AND created_at >= $2
	`

	err := r.db.QueryRow(query, userID, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booking costs: %w", err)
	}

	return total, nil
}

// CountBookingsForAttraction returns how many bookings reference an
// attraction. Used for admin reporting.
func (r *BookingRepository) CountBookingsForAttraction(attractionID int64) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM bookings WHERE attraction_id = $1`

	err := r.db.QueryRow(query, attractionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for attraction: %w", err)
	}

	return count, nil
}
