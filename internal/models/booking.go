package models

import (
	"time"
)

// BookingDateLayout is the wire format for booking dates (DD-MM-YYYY)
const BookingDateLayout = "02-01-2006"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "Requested"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// IsValid reports whether s is one of the known booking statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusRequested, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking represents a reservation of attraction slots for a user.
// TotalCost is derived (guests x ticket price) at creation and on guest
// edits. CreatedAt is immutable and drives the fraud guard's rolling
// windows.
type Booking struct {
	ID               int64         `json:"id" db:"id"`
	BookingReference string        `json:"booking_reference" db:"booking_reference"`
	UserID           int64         `json:"user_id" db:"user_id"`
	AttractionID     int64         `json:"attraction_id" db:"attraction_id"`
	BookingDate      time.Time     `json:"booking_date" db:"booking_date"`
	NumberOfGuests   int           `json:"number_of_guests" db:"number_of_guests"`
	TotalCost        float64       `json:"total_cost" db:"total_cost"`
	Status           BookingStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// IsCancelled reports whether the booking currently holds no slots
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// CreateBookingRequest is the payload for creating a booking. The "id"
// field is the attraction id, matching the public API shape.
type CreateBookingRequest struct {
	AttractionID   int64  `json:"id" binding:"required"`
	BookingDate    string `json:"booking_date" binding:"required"`
	NumberOfGuests int    `json:"number_of_guests" binding:"required,min=1"`
}

// UpdateBookingRequest is the admin payload for partial booking updates
type UpdateBookingRequest struct {
	BookingDate    *string `json:"booking_date,omitempty"`
	NumberOfGuests *int    `json:"number_of_guests,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// ParseBookingDate parses a DD-MM-YYYY date string
func ParseBookingDate(value string) (time.Time, error) {
	return time.Parse(BookingDateLayout, value)
}

// FormatBookingDate renders a date in the DD-MM-YYYY wire format
func FormatBookingDate(t time.Time) string {
	return t.Format(BookingDateLayout)
}
