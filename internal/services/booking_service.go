package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/models"
)

// BookingService runs the booking admission pipeline and manages the
// booking lifecycle. Gate order is fixed: identity, fraud guard, party
// size, date, attraction, availability, pricing, then the transactional
// slot reservation.
type BookingService struct {
	userRepo       *database.UserRepository
	attractionRepo *database.AttractionRepository
	bookingRepo    *database.BookingRepository
	fraudGuard     *FraudGuardService
	audit          *AuditService
	logger         *logrus.Logger
	config         BookingLimitsConfig
}

// BookingLimitsConfig holds the admission pipeline limits
type BookingLimitsConfig struct {
	MaxGuestsPerBooking int     // larger parties must contact the attraction directly
	CostCeiling         float64 // bookings at or above this need an admin
	BookingWindowDays   int     // latest bookable date, counted from today
}

// DefaultBookingLimitsConfig returns the default admission limits
func DefaultBookingLimitsConfig() BookingLimitsConfig {
	return BookingLimitsConfig{
		MaxGuestsPerBooking: 20,
		CostCeiling:         1000,
		BookingWindowDays:   180,
	}
}

// RequestMeta carries client details used for audit logging
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// NewBookingService creates a new booking service. audit may be nil when
// audit logging is disabled.
func NewBookingService(
	userRepo *database.UserRepository,
	attractionRepo *database.AttractionRepository,
	bookingRepo *database.BookingRepository,
	fraudGuard *FraudGuardService,
	audit *AuditService,
	logger *logrus.Logger,
	config BookingLimitsConfig,
) *BookingService {
	return &BookingService{
		userRepo:       userRepo,
		attractionRepo: attractionRepo,
		bookingRepo:    bookingRepo,
		fraudGuard:     fraudGuard,
		audit:          audit,
		logger:         logger,
		config:         config,
	}
}

// CreateBooking admits a booking for targetUserID. With bypassLimits set
// (admin-on-behalf creation) the fraud guard and the cost ceiling are
// skipped; every other gate still applies. The availability check before
// pricing is advisory; the authoritative re-check happens under a row
// lock inside the reservation transaction.
func (s *BookingService) CreateBooking(targetUserID int64, req *models.CreateBookingRequest, bypassLimits bool, meta RequestMeta) (*models.Booking, error) {
	user, err := s.userRepo.GetUserByID(targetUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !bypassLimits {
		if err := s.fraudGuard.Check(user); err != nil {
			if errors.Is(err, ErrAccountLocked) {
				s.rejectAudit(targetUserID, "account_locked", meta)
			}
			return nil, err
		}
	}

	if req.NumberOfGuests > s.config.MaxGuestsPerBooking {
		s.rejectAudit(targetUserID, "guest_limit", meta)
		return nil, ErrGuestLimit
	}

	bookingDate, err := models.ParseBookingDate(req.BookingDate)
	if err != nil {
		s.rejectAudit(targetUserID, "invalid_date_format", meta)
		return nil, ErrInvalidDateFormat
	}

	today := truncateToDay(time.Now().UTC())
	maxDate := today.AddDate(0, 0, s.config.BookingWindowDays)
	if bookingDate.Before(today) || bookingDate.After(maxDate) {
		s.rejectAudit(targetUserID, "date_out_of_range", meta)
		return nil, ErrDateOutOfRange
	}

	attraction, err := s.attractionRepo.GetAttractionByID(req.AttractionID)
	if err != nil {
		return nil, err
	}
	if attraction == nil {
		return nil, ErrAttractionNotFound
	}

	if attraction.AvailableSlots < req.NumberOfGuests {
		s.rejectAudit(targetUserID, "insufficient_slots", meta)
		return nil, ErrInsufficientSlots
	}

	totalCost := float64(req.NumberOfGuests) * attraction.TicketPrice

	if totalCost >= s.config.CostCeiling && !bypassLimits {
		s.rejectAudit(targetUserID, "cost_ceiling", meta)
		return nil, ErrCostCeiling
	}

	booking := &models.Booking{
		UserID:         targetUserID,
		AttractionID:   attraction.ID,
		BookingDate:    bookingDate,
		NumberOfGuests: req.NumberOfGuests,
		TotalCost:      totalCost,
	}

	if err := s.bookingRepo.CreateBookingWithSlotReservation(booking); err != nil {
		if errors.Is(err, database.ErrInsufficientSlots) {
			s.rejectAudit(targetUserID, "insufficient_slots", meta)
			return nil, ErrInsufficientSlots
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"booking_reference": booking.BookingReference,
		"user_id":           targetUserID,
		"attraction_id":     attraction.ID,
		"guests":            booking.NumberOfGuests,
		"total_cost":        booking.TotalCost,
		"bypassed":          bypassLimits,
	}).Info("Booking admitted")

	if s.audit != nil {
		if err := s.audit.LogBookingAdmitted(targetUserID, booking.ID, booking.TotalCost, bypassLimits, meta.IPAddress, meta.UserAgent); err != nil {
			s.logger.WithError(err).Error("Failed to write booking audit entry")
		}
	}

	return booking, nil
}

// GetUserBookings returns all bookings belonging to a user
func (s *BookingService) GetUserBookings(userID int64) ([]*models.Booking, error) {
	return s.bookingRepo.GetBookingsByUserID(userID)
}

// ListBookings returns all bookings in the system
func (s *BookingService) ListBookings() ([]*models.Booking, error) {
	return s.bookingRepo.ListBookings()
}

// UpdateBooking applies an admin edit to a booking. Slot inventory moves
// with the edit: growing the party or reviving a cancelled booking
// reserves slots, cancelling or shrinking releases them. CreatedAt is
// never modified.
func (s *BookingService) UpdateBooking(bookingID int64, req *models.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetBookingByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if req.BookingDate != nil {
		bookingDate, err := models.ParseBookingDate(*req.BookingDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		booking.BookingDate = bookingDate
	}

	oldGuests := booking.NumberOfGuests
	oldHoldsSlots := !booking.IsCancelled()

	newStatus := booking.Status
	if req.Status != nil {
		candidate := models.BookingStatus(*req.Status)
		if !candidate.IsValid() {
			return nil, ErrInvalidStatus
		}
		newStatus = candidate
	}

	newGuests := oldGuests
	if req.NumberOfGuests != nil {
		if *req.NumberOfGuests < 1 {
			return nil, ErrGuestCountInvalid
		}
		if *req.NumberOfGuests > s.config.MaxGuestsPerBooking {
			return nil, ErrGuestLimit
		}
		newGuests = *req.NumberOfGuests
	}

	if newGuests != oldGuests {
		attraction, err := s.attractionRepo.GetAttractionByID(booking.AttractionID)
		if err != nil {
			return nil, err
		}
		if attraction == nil {
			return nil, ErrAttractionNotFound
		}
		booking.TotalCost = float64(newGuests) * attraction.TicketPrice
	}

	newHoldsSlots := newStatus != models.BookingStatusCancelled

	slotDelta := 0
	if newHoldsSlots {
		slotDelta += newGuests
	}
	if oldHoldsSlots {
		slotDelta -= oldGuests
	}

	booking.NumberOfGuests = newGuests
	booking.Status = newStatus

	if err := s.bookingRepo.UpdateBookingWithSlotAdjustment(booking, slotDelta); err != nil {
		if errors.Is(err, database.ErrInsufficientSlots) {
			return nil, ErrInsufficientSlotsForUpdate
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"guests":     booking.NumberOfGuests,
		"status":     booking.Status,
		"slot_delta": slotDelta,
	}).Info("Booking updated")

	return booking, nil
}

// DeleteBooking removes a booking and returns its slots to the attraction.
// A cancelled booking already released its slots, so deleting one leaves
// the inventory untouched.
func (s *BookingService) DeleteBooking(bookingID int64) error {
	booking, err := s.bookingRepo.GetBookingByID(bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}

	releaseSlots := 0
	if !booking.IsCancelled() {
		releaseSlots = booking.NumberOfGuests
	}

	if err := s.bookingRepo.DeleteBookingWithSlotRelease(booking, releaseSlots); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     bookingID,
		"released_slots": releaseSlots,
	}).Info("Booking deleted")

	return nil
}

func (s *BookingService) rejectAudit(userID int64, reason string, meta RequestMeta) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogBookingRejected(userID, reason, meta.IPAddress, meta.UserAgent); err != nil {
		s.logger.WithError(err).Error("Failed to write rejection audit entry")
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
