package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tajapart/internal/model"
	"tajapart/internal/service"
)

// AnnouncementHandler serves the announcements board.
type AnnouncementHandler struct {
	service service.CatalogService
	logger  *logrus.Entry
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(s service.CatalogService, logger *logrus.Entry) *AnnouncementHandler {
	return &AnnouncementHandler{service: s, logger: logger}
}

func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req model.Announcement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	announcement, err := h.service.CreateAnnouncement(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("failed to create announcement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create announcement"})
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.service.ListAnnouncements(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list announcements")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve announcements"})
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// RegisterAnnouncementRoutes registers announcement routes.
func (h *AnnouncementHandler) RegisterAnnouncementRoutes(rg *gin.RouterGroup) {
	rg.POST("/announcements", h.CreateAnnouncement)
	rg.GET("/announcements", h.ListAnnouncements)
}
