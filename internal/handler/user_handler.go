package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tajapart/internal/model"
	"tajapart/internal/service"
)

// UserHandler handles user directory and rental agreement requests.
type UserHandler struct {
	service service.MembershipService
	logger  *logrus.Entry
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s service.MembershipService, logger *logrus.Entry) *UserHandler {
	return &UserHandler{service: s, logger: logger}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns the user record for the email, or null when absent.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.logger.WithError(err).Error("failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpsertUser inserts the user on first sign-in and returns the stored record
// unchanged on every later call.
func (h *UserHandler) UpsertUser(c *gin.Context) {
	var req model.User
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	user, inserted, err := h.service.UpsertUser(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("failed to upsert user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}
	if inserted {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetAgreement returns the agreement whose occupant matches the email, or null.
func (h *UserHandler) GetAgreement(c *gin.Context) {
	agreement, err := h.service.GetAgreementByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.logger.WithError(err).Error("failed to get agreement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve agreement"})
		return
	}
	c.JSON(http.StatusOK, agreement)
}

// UpsertAgreement drives the per-apartment state machine. The silent-skip
// outcome (unknown occupant) is a payload-level signal, not an HTTP error:
// the frontend checks the inserted flag.
func (h *UserHandler) UpsertAgreement(c *gin.Context) {
	var req model.Agreement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.ApartmentNo == "" || req.UserEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apartment_no and user_email are required"})
		return
	}

	agreement, outcome, err := h.service.UpsertAgreement(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("failed to upsert agreement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save agreement"})
		return
	}

	if outcome == service.AgreementSkipped {
		c.JSON(http.StatusOK, gin.H{
			"inserted": false,
			"message":  "no user found for the occupant email, agreement not created",
		})
		return
	}

	if outcome == service.AgreementInserted {
		c.JSON(http.StatusCreated, agreement)
		return
	}
	c.JSON(http.StatusOK, agreement)
}

// DeleteAgreement removes the agreement and demotes the former occupant.
func (h *UserHandler) DeleteAgreement(c *gin.Context) {
	err := h.service.DeleteAgreement(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAgreementNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("failed to delete agreement")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete agreement"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RegisterUserRoutes registers user and agreement routes.
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:email", h.GetUser)
	rg.PUT("/users", h.UpsertUser)
	rg.GET("/agreements/:email", h.GetAgreement)
	rg.PUT("/agreements", h.UpsertAgreement)
	rg.DELETE("/agreements/:id", h.DeleteAgreement)
}
