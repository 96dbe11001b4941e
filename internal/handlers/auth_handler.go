package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/middleware"
	"github.com/tripslot/attractions-backend/internal/models"
	"github.com/tripslot/attractions-backend/internal/services"
	"github.com/tripslot/attractions-backend/internal/utils"
	"github.com/tripslot/attractions-backend/pkg/jwt"
	"github.com/tripslot/attractions-backend/pkg/validator"
)

// AuthHandler handles registration, login and account management
type AuthHandler struct {
	userRepo   *database.UserRepository
	jwtService *jwt.Service
	audit      *services.AuditService
	logger     *logrus.Logger
	bcryptCost int
}

// NewAuthHandler creates a new auth handler. audit may be nil when audit
// logging is disabled.
func NewAuthHandler(userRepo *database.UserRepository, jwtService *jwt.Service, audit *services.AuditService, logger *logrus.Logger, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtService: jwtService,
		audit:      audit,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validator.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validator.ValidatePhone(req.Phone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := h.userRepo.CreateUser(req.Name, req.Email, req.Phone, string(hashed))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondError(c, h.logger, services.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, h.logger, services.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if h.audit != nil {
		if err := h.audit.LogLogin(user.ID, user.Email, utils.GetRealIP(c), utils.GetUserAgent(c)); err != nil {
			h.logger.WithError(err).Error("Failed to write login audit entry")
		}
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Email:   user.Email,
		Token:   token,
		IsAdmin: user.IsAdmin,
	})
}

// ListUsers handles GET /auth/users (admin only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /auth/user/:user_id. Accessible by the account
// holder or an admin.
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	if userCtx.UserID != userID && !userCtx.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondError(c, h.logger, services.ErrUserNotFound)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAccount handles PUT /auth/update for the logged-in user
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != nil {
		if err := validator.ValidateEmail(*req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Phone != nil {
		if err := validator.ValidatePhone(*req.Phone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), h.bcryptCost)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		hashedStr := string(hashed)
		req.Password = &hashedStr
	}

	if err := h.userRepo.UpdateUser(userCtx.UserID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := h.userRepo.GetUserByID(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondError(c, h.logger, services.ErrUserNotFound)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteAccount handles DELETE /auth/delete/:user_id. Accessible by the
// account holder or an admin.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	if userCtx.UserID != userID && !userCtx.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondError(c, h.logger, services.ErrUserNotFound)
		return
	}

	if err := h.userRepo.DeleteUser(userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("user_id", userID).Info("User deleted")

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// UnlockUser handles POST /auth/unlock/:user_id (admin only). Clears a
// fraud guard lockout and resets the attempt counter.
func (h *AuthHandler) UnlockUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondError(c, h.logger, services.ErrUserNotFound)
		return
	}

	if err := h.userRepo.UnlockUser(userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	h.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"admin_id": userCtx.UserID,
	}).Info("Account unlocked")

	if h.audit != nil {
		if err := h.audit.LogAdminAction(userCtx.UserID, "account_unlocked", "user", userID, utils.GetRealIP(c), utils.GetUserAgent(c)); err != nil {
			h.logger.WithError(err).Error("Failed to write unlock audit entry")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account unlocked successfully"})
}
