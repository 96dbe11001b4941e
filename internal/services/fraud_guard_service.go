package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/models"
)

// FraudGuardService enforces the per-user booking safety limits. Both
// checks run over a trailing window anchored to booking creation times,
// never to booking dates.
type FraudGuardService struct {
	bookingRepo *database.BookingRepository
	userRepo    *database.UserRepository
	audit       *AuditService
	logger      *logrus.Logger
	config      FraudGuardConfig
}

// FraudGuardConfig holds the fraud guard thresholds
type FraudGuardConfig struct {
	MaxRequestedBookings int           // Requested bookings in the window before lockout
	Window               time.Duration // trailing window for both checks
	SpendLimit           float64       // total spend in the window
}

// DefaultFraudGuardConfig returns the default fraud guard configuration
func DefaultFraudGuardConfig() FraudGuardConfig {
	return FraudGuardConfig{
		MaxRequestedBookings: 5,
		Window:               24 * time.Hour,
		SpendLimit:           2500,
	}
}

// NewFraudGuardService creates a new fraud guard service. audit may be nil
// when audit logging is disabled.
func NewFraudGuardService(bookingRepo *database.BookingRepository, userRepo *database.UserRepository, audit *AuditService, logger *logrus.Logger, config FraudGuardConfig) *FraudGuardService {
	return &FraudGuardService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		audit:       audit,
		logger:      logger,
		config:      config,
	}
}

// IsRateLimited reports whether the user is locked or has crossed the
// Requested-booking threshold. Crossing the threshold locks the account
// immediately; the lock is sticky until an admin clears it, even after
// the window slides past the offending bookings.
func (s *FraudGuardService) IsRateLimited(user *models.User) (bool, error) {
	if user.IsLocked {
		return true, nil
	}

	since := time.Now().Add(-s.config.Window)
	count, err := s.bookingRepo.CountRequestedSince(user.ID, since)
	if err != nil {
		return false, fmt.Errorf("failed to check booking frequency: %w", err)
	}

	if count >= s.config.MaxRequestedBookings {
		if err := s.userRepo.LockUser(user.ID); err != nil {
			return false, fmt.Errorf("failed to lock user: %w", err)
		}
		user.IsLocked = true

		s.logger.WithFields(logrus.Fields{
			"user_id":            user.ID,
			"requested_bookings": count,
		}).Warn("Account locked by fraud guard")

		if s.audit != nil {
			if err := s.audit.LogAccountLocked(user.ID, count); err != nil {
				s.logger.WithError(err).Error("Failed to write lockout audit entry")
			}
		}

		return true, nil
	}

	return false, nil
}

// ExceededSpendLimit reports whether the user's booking spend within the
// window, across all statuses, has reached the limit.
func (s *FraudGuardService) ExceededSpendLimit(userID int64) (bool, error) {
	since := time.Now().Add(-s.config.Window)
	total, err := s.bookingRepo.SumCostSince(userID, since)
	if err != nil {
		return false, fmt.Errorf("failed to check booking spend: %w", err)
	}

	return total >= s.config.SpendLimit, nil
}

// Check runs both fraud checks for the user and returns ErrAccountLocked
// when either one blocks the booking. The attempt counter is bumped on
// every guarded attempt regardless of outcome.
func (s *FraudGuardService) Check(user *models.User) error {
	if _, err := s.userRepo.IncrementBookingAttempts(user.ID); err != nil {
		return fmt.Errorf("failed to record booking attempt: %w", err)
	}

	limited, err := s.IsRateLimited(user)
	if err != nil {
		return err
	}
	if limited {
		return ErrAccountLocked
	}

	exceeded, err := s.ExceededSpendLimit(user.ID)
	if err != nil {
		return err
	}
	if exceeded {
		return ErrAccountLocked
	}

	return nil
}
