package models

import "time"

// Attraction represents a bookable attraction with a finite slot inventory.
// AverageRating is derived from reviews at query time and never stored.
type Attraction struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Location       string    `json:"location" db:"location"`
	ContactPhone   string    `json:"contact_phone" db:"contact_phone"`
	ContactEmail   string    `json:"contact_email" db:"contact_email"`
	OpeningHours   string    `json:"opening_hours" db:"opening_hours"`
	TicketPrice    float64   `json:"ticket_price" db:"ticket_price"`
	AvailableSlots int       `json:"available_slots" db:"available_slots"`
	AverageRating  *float64  `json:"average_rating,omitempty" db:"average_rating"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreateAttractionRequest is the payload for creating an attraction
type CreateAttractionRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	Location       string  `json:"location" binding:"required"`
	ContactPhone   string  `json:"contact_phone" binding:"required"`
	ContactEmail   string  `json:"contact_email" binding:"required"`
	OpeningHours   string  `json:"opening_hours" binding:"required"`
	TicketPrice    float64 `json:"ticket_price" binding:"required,gt=0"`
	AvailableSlots int     `json:"available_slots" binding:"required,gte=0"`
}

// UpdateAttractionRequest is the payload for partial attraction updates
type UpdateAttractionRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Location       *string  `json:"location,omitempty"`
	ContactPhone   *string  `json:"contact_phone,omitempty"`
	ContactEmail   *string  `json:"contact_email,omitempty"`
	OpeningHours   *string  `json:"opening_hours,omitempty"`
	TicketPrice    *float64 `json:"ticket_price,omitempty"`
	AvailableSlots *int     `json:"available_slots,omitempty"`
}
