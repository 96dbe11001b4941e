package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// Review represents a rating left by a user for an attraction. At most one
// review exists per (user, attraction) pair.
type Review struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	AttractionID int64      `json:"attraction_id" db:"attraction_id"`
	Rating       int        `json:"rating" db:"rating"`
	Comment      NullString `json:"comment" db:"comment"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// CreateReviewRequest is the payload for leaving a review
type CreateReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// UpdateReviewRequest is the payload for partial review updates
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// Validate validates the create review request
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 0 || r.Rating > 10 {
		return errors.New("rating must be between 0 and 10")
	}
	return nil
}
