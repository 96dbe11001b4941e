package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripslot/attractions-backend/internal/models"
)

// AttractionRepository handles attraction database operations
type AttractionRepository struct {
	db DB
}

// NewAttractionRepository creates a new attraction repository
func NewAttractionRepository(db DB) *AttractionRepository {
	return &AttractionRepository{
		db: db,
	}
}

// attractionColumns selects attraction fields plus the derived average
// rating from reviews.
const attractionColumns = `
	a.id, a.name, a.description, a.location, a.contact_phone,
	a.contact_email, a.opening_hours, a.ticket_price, a.available_slots,
	AVG(r.rating)::float AS average_rating,
	a.created_at, a.updated_at`

const attractionGroupBy = `
	GROUP BY a.id, a.name, a.description, a.location, a.contact_phone,
	         a.contact_email, a.opening_hours, a.ticket_price,
	         a.available_slots, a.created_at, a.updated_at`

// CreateAttraction creates a new attraction
func (r *AttractionRepository) CreateAttraction(req *models.CreateAttractionRequest) (*models.Attraction, error) {
	attraction := &models.Attraction{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		OpeningHours:   req.OpeningHours,
		TicketPrice:    req.TicketPrice,
		AvailableSlots: req.AvailableSlots,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	query := `
		INSERT INTO attractions (
			name, description, location, contact_phone, contact_email,
			opening_hours, ticket_price, available_slots, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		attraction.Name,
		attraction.Description,
		attraction.Location,
		attraction.ContactPhone,
		attraction.ContactEmail,
		attraction.OpeningHours,
		attraction.TicketPrice,
		attraction.AvailableSlots,
		attraction.CreatedAt,
		attraction.UpdatedAt,
	).Scan(&attraction.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create attraction: %w", ErrUniqueViolation)
		}
		return nil, fmt.Errorf("failed to create attraction: %w", err)
	}

	return attraction, nil
}

// GetAttractionByID retrieves an attraction by ID with its average rating.
// Returns nil without error when the attraction does not exist.
func (r *AttractionRepository) GetAttractionByID(id int64) (*models.Attraction, error) {
	var attraction models.Attraction

	query := `
		SELECT ` + attractionColumns + `
		FROM attractions a
		LEFT JOIN reviews r ON r.attraction_id = a.id
		WHERE a.id = $1
		` + attractionGroupBy

	err := r.db.Get(&attraction, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attraction by ID: %w", err)
	}

	return &attraction, nil
}

// ListAttractions retrieves all attractions with their average ratings
func (r *AttractionRepository) ListAttractions() ([]*models.Attraction, error) {
	var attractions []*models.Attraction

	query := `
		SELECT ` + attractionColumns + `
		FROM attractions a
		LEFT JOIN reviews r ON r.attraction_id = a.id
		` + attractionGroupBy + `
		ORDER BY a.name ASC
	`

	err := r.db.Select(&attractions, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attractions: %w", err)
	}

	return attractions, nil
}

// UpdateAttraction applies a partial update. Nil fields are left unchanged.
func (r *AttractionRepository) UpdateAttraction(id int64, req *models.UpdateAttractionRequest) error {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	appendClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		appendClause("name", *req.Name)
	}
	if req.Description != nil {
		appendClause("description", *req.Description)
	}
	if req.Location != nil {
		appendClause("location", *req.Location)
	}
	if req.ContactPhone != nil {
		appendClause("contact_phone", *req.ContactPhone)
	}
	if req.ContactEmail != nil {
		appendClause("contact_email", *req.ContactEmail)
	}
	if req.OpeningHours != nil {
		appendClause("opening_hours", *req.OpeningHours)
	}
	if req.TicketPrice != nil {
		appendClause("ticket_price", *req.TicketPrice)
	}
	if req.AvailableSlots != nil {
		appendClause("available_slots", *req.AvailableSlots)
	}

	if len(setClauses) == 0 {
		return nil
	}

	appendClause("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE attractions SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argPos)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("failed to update attraction: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("failed to update attraction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("attraction not found")
	}

	return nil
}

// DeleteAttraction removes an attraction. Bookings and reviews cascade at
// the schema level.
func (r *AttractionRepository) DeleteAttraction(id int64) error {
	result, err := r.db.Exec(`DELETE FROM attractions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attraction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("attraction not found")
	}

	return nil
}
