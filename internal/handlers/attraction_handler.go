package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/models"
	"github.com/tripslot/attractions-backend/internal/services"
	"github.com/tripslot/attractions-backend/pkg/validator"
)

// AttractionHandler handles attraction catalogue endpoints
type AttractionHandler struct {
	attractionRepo *database.AttractionRepository
	bookingRepo    *database.BookingRepository
	logger         *logrus.Logger
}

// NewAttractionHandler creates a new attraction handler
func NewAttractionHandler(attractionRepo *database.AttractionRepository, bookingRepo *database.BookingRepository, logger *logrus.Logger) *AttractionHandler {
	return &AttractionHandler{
		attractionRepo: attractionRepo,
		bookingRepo:    bookingRepo,
		logger:         logger,
	}
}

// ListAttractions handles GET /attractions/all (public)
func (h *AttractionHandler) ListAttractions(c *gin.Context) {
	attractions, err := h.attractionRepo.ListAttractions()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, attractions)
}

// GetAttraction handles GET /attractions/:attraction_id (public)
func (h *AttractionHandler) GetAttraction(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attraction id"})
		return
	}

	attraction, err := h.attractionRepo.GetAttractionByID(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if attraction == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Attraction with id %d not found", attractionID)})
		return
	}

	c.JSON(http.StatusOK, attraction)
}

// CreateAttraction handles POST /attractions/create (admin only)
func (h *AttractionHandler) CreateAttraction(c *gin.Context) {
	var req models.CreateAttractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validator.ValidateEmail(req.ContactEmail); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validator.ValidatePhone(req.ContactPhone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attraction, err := h.attractionRepo.CreateAttraction(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"attraction_id": attraction.ID,
		"name":          attraction.Name,
	}).Info("Attraction created")

	c.JSON(http.StatusCreated, attraction)
}

// UpdateAttraction handles PUT /attractions/update/:attraction_id (admin only)
func (h *AttractionHandler) UpdateAttraction(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attraction id"})
		return
	}

	var req models.UpdateAttractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.attractionRepo.GetAttractionByID(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil {
		respondError(c, h.logger, services.ErrAttractionNotFound)
		return
	}

	if err := h.attractionRepo.UpdateAttraction(attractionID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	attraction, err := h.attractionRepo.GetAttractionByID(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, attraction)
}

// DeleteAttraction handles DELETE /attractions/delete/:attraction_id
// (admin only). Bookings and reviews for the attraction cascade away.
func (h *AttractionHandler) DeleteAttraction(c *gin.Context) {
	attractionID, err := strconv.ParseInt(c.Param("attraction_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attraction id"})
		return
	}

	attraction, err := h.attractionRepo.GetAttractionByID(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if attraction == nil {
		respondError(c, h.logger, services.ErrAttractionNotFound)
		return
	}

	cascadedBookings, err := h.bookingRepo.CountBookingsForAttraction(attractionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.attractionRepo.DeleteAttraction(attractionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"attraction_id":     attractionID,
		"name":              attraction.Name,
		"cascaded_bookings": cascadedBookings,
	}).Info("Attraction deleted")

	c.JSON(http.StatusOK, gin.H{
		"message":          fmt.Sprintf("Attraction '%s' deleted successfully", attraction.Name),
		"removed_bookings": cascadedBookings,
	})
}
