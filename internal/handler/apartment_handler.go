package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tajapart/internal/service"
)

const defaultPageSize = 6

// ApartmentHandler serves the apartment catalog.
type ApartmentHandler struct {
	service service.CatalogService
	logger  *logrus.Entry
}

// NewApartmentHandler creates a new ApartmentHandler.
func NewApartmentHandler(s service.CatalogService, logger *logrus.Entry) *ApartmentHandler {
	return &ApartmentHandler{service: s, logger: logger}
}

func (h *ApartmentHandler) ListApartments(c *gin.Context) {
	apartments, err := h.service.ListApartments(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list apartments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve apartments"})
		return
	}
	c.JSON(http.StatusOK, apartments)
}

// PageApartments serves the paged catalog. Pages are 1-indexed from the
// caller, matching the frontend's pagination widget.
func (h *ApartmentHandler) PageApartments(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}
	size, err := strconv.ParseInt(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size parameter"})
		return
	}

	apartments, err := h.service.PageApartments(c.Request.Context(), page, size)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("failed to page apartments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve apartments"})
		return
	}
	c.JSON(http.StatusOK, apartments)
}

func (h *ApartmentHandler) CountApartments(c *gin.Context) {
	count, err := h.service.CountApartments(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to count apartments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count apartments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// RegisterApartmentRoutes registers apartment catalog routes.
func (h *ApartmentHandler) RegisterApartmentRoutes(rg *gin.RouterGroup) {
	rg.GET("/apartments", h.ListApartments)
	rg.GET("/all-apartments", h.PageApartments)
	rg.GET("/apartments-count", h.CountApartments)
}
