package database

import (
	"fmt"
	"time"

	"github.com/tripslot/attractions-backend/internal/models"
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{
		db: db,
	}
}

// HasConfirmedPastBooking reports whether the user holds a Confirmed
// booking for the attraction whose visit date has already passed. Only
// such users may leave a review.
func (r *ReviewRepository) HasConfirmedPastBooking(userID, attractionID int64) (bool, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE user_id = $1
		  AND attraction_id = $2
		  AND status = $3
		  AND booking_date < $4
	`

	err := r.db.QueryRow(query, userID, attractionID, models.BookingStatusConfirmed, time.Now()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmed bookings: %w", err)
	}

	return count > 0, nil
}

// CreateReview creates a review for an attraction
func (r *ReviewRepository) CreateReview(userID, attractionID int64, rating int, comment *string) (*models.Review, error) {
	review := &models.Review{
		UserID:       userID,
		AttractionID: attractionID,
		Rating:       rating,
		CreatedAt:    time.Now(),
	}
	if comment != nil {
		review.Comment.Valid = true
		review.Comment.String = *comment
	}

	query := `
		INSERT INTO reviews (user_id, attraction_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		review.UserID,
		review.AttractionID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create review: %w", ErrUniqueViolation)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// GetReviewByIDForUser retrieves a review only when it belongs to the
// given user. Returns nil without error otherwise, so callers cannot tell
// a foreign review from a missing one.
func (r *ReviewRepository) GetReviewByIDForUser(id, userID int64) (*models.Review, error) {
	var review models.Review

	query := `
		SELECT id, user_id, attraction_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.Get(&review, query, id, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetReviewsByAttractionID retrieves all reviews for an attraction
func (r *ReviewRepository) GetReviewsByAttractionID(attractionID int64) ([]*models.Review, error) {
	var reviews []*models.Review

	query := `
		SELECT id, user_id, attraction_id, rating, comment, created_at
		FROM reviews
		WHERE attraction_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&reviews, query, attractionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews by attraction: %w", err)
	}

	return reviews, nil
}

// GetReviewsByUserID retrieves all reviews left by a user
func (r *ReviewRepository) GetReviewsByUserID(userID int64) ([]*models.Review, error) {
	var reviews []*models.Review

	query := `
		SELECT id, user_id, attraction_id, rating, comment, created_at
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&reviews, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews by user: %w", err)
	}

	return reviews, nil
}

// UpdateReview persists edited rating and comment for a review
func (r *ReviewRepository) UpdateReview(review *models.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1,
		    comment = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, review.Rating, review.Comment, review.ID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}

// DeleteReviewForUser removes a review owned by the given user. Returns
// false when no such review exists.
func (r *ReviewRepository) DeleteReviewForUser(id, userID int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
