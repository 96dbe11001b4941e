package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP statuses; the messages are part of the public API surface.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAttractionNotFound = errors.New("attraction not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrReviewNotFound     = errors.New("review not found or access denied")

	ErrInvalidCredentials = errors.New("invalid email or password")

	// Fraud guard lockout, HTTP 429
	ErrAccountLocked = errors.New("Account locked for security reasons. Please contact admin.")

	// Admission pipeline rejections
	ErrGuestLimit        = errors.New("For bookings greater than 20, please contact the attraction directly.")
	ErrInvalidDateFormat = errors.New("Invalid booking date format. Enter as DD-MM-YYYY.")
	ErrDateOutOfRange    = errors.New("Booking date out of allowed range.")
	ErrInsufficientSlots = errors.New("Not enough available slots for this booking.")
	ErrCostCeiling       = errors.New("Bookings over $1000 require admin permission.")

	// Lifecycle rejections
	ErrGuestCountInvalid          = errors.New("Number of guests must be at least 1.")
	ErrInsufficientSlotsForUpdate = errors.New("Not enough availability for the updated number of guests.")
	ErrInvalidStatus              = errors.New("Status can only be 'Requested', 'Confirmed', or 'Cancelled'.")

	// Review gate, HTTP 403
	ErrReviewNotAllowed = errors.New("No confirmed booking for this attraction")

	// Unique constraint conflicts, HTTP 409
	ErrConflict = errors.New("resource already exists")
)
