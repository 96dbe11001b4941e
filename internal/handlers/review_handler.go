package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/middleware"
	"github.com/tripslot/attractions-backend/internal/models"
	"github.com/tripslot/attractions-backend/internal/services"
)

// ReviewHandler handles attraction review endpoints
type ReviewHandler struct {
	reviewRepo *database.ReviewRepository
	logger     *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewRepo *database.ReviewRepository, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewRepo: reviewRepo,
		logger:     logger,
	}
}

// CreateReview handles POST /review/create/:attraction_id. Only users
// with a Confirmed booking whose visit date has passed may review.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attraction id"})
		return
	}

	userCtx := middleware.MustGetUserContext(c)

	allowed, err := h.reviewRepo.HasConfirmedPastBooking(userCtx.UserID, attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !allowed {
		respondError(c, h.logger, services.ErrReviewNotAllowed)
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewRepo.CreateReview(userCtx.UserID, attractionID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"review_id":     review.ID,
		"user_id":       userCtx.UserID,
		"attraction_id": attractionID,
	}).Info("Review created")

	c.JSON(http.StatusCreated, gin.H{"message": "Review successfully added"})
}

// GetReviews handles GET /review/:attraction_id (public)
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attraction id"})
		return
	}

	reviews, err := h.reviewRepo.GetReviewsByAttractionID(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// MyReviews handles GET /review/my_reviews for the logged-in user
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	reviews, err := h.reviewRepo.GetReviewsByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// UpdateReview handles PUT /review/update/:review_id. Users may only edit
// their own reviews; a foreign review looks like a missing one.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	userCtx := middleware.MustGetUserContext(c)

	review, err := h.reviewRepo.GetReviewByIDForUser(reviewID, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if review == nil {
		respondError(c, h.logger, services.ErrReviewNotFound)
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 10"})
			return
		}
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment.Valid = true
		review.Comment.String = *req.Comment
	}

	if err := h.reviewRepo.UpdateReview(review); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview handles DELETE /review/delete/:review_id for the
// logged-in user's own review.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	userCtx := middleware.MustGetUserContext(c)

	deleted, err := h.reviewRepo.DeleteReviewForUser(reviewID, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !deleted {
		respondError(c, h.logger, services.ErrReviewNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
