package services

import (
	"encoding/json"
	"fmt"

	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/utils"
)

// AuditService records security-relevant events to the audit_logs table.
// Admission attempts, lockouts and admin overrides all leave a trail here.
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID     *int64                 // Can be nil for pre-authentication events
	Action     string                 // e.g. "booking_admitted", "booking_rejected", "account_locked"
	EntityType string                 // "booking", "user", "attraction"
	EntityID   *int64                 // ID of the affected entity (can be nil)
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{} // Additional details stored as JSONB
}

// LogBookingAdmitted logs a booking that passed the admission pipeline
func (s *AuditService) LogBookingAdmitted(userID, bookingID int64, totalCost float64, bypassed bool, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"total_cost":  totalCost,
		"bypassed":    bypassed,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "booking_admitted",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogBookingRejected logs a booking attempt rejected by an admission gate
func (s *AuditService) LogBookingRejected(userID int64, reason, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"reason":      reason,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "booking_rejected",
		EntityType: "booking",
		EntityID:   nil,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogAccountLocked logs a fraud guard lockout
func (s *AuditService) LogAccountLocked(userID int64, requestedCount int) error {
	details := map[string]interface{}{
		"requested_bookings": requestedCount,
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "account_locked",
		EntityType: "user",
		EntityID:   &userID,
		Details:    details,
	})
}

// LogAdminAction logs an admin override such as an unlock or a booking edit
func (s *AuditService) LogAdminAction(adminID int64, action string, entityType string, entityID int64, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogLogin logs a successful login event
func (s *AuditService) LogLogin(userID int64, email, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"email":       email,
		"device_info": utils.ParseUserAgent(userAgent),
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "login",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
