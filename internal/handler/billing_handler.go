package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tajapart/internal/model"
	"tajapart/internal/service"
)

// BillingHandler handles payments, coupons, and payment intents.
type BillingHandler struct {
	service service.BillingService
	intents service.IntentService
	logger  *logrus.Entry
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(s service.BillingService, intents service.IntentService, logger *logrus.Entry) *BillingHandler {
	return &BillingHandler{service: s, intents: intents, logger: logger}
}

// RecordPayment inserts at most one payment per user per month. A duplicate
// is a payload-level signal (isExist) the frontend checks, not an HTTP error.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	var req model.Payment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.UserEmail == "" || req.Month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email and month are required"})
		return
	}

	payment, exists, err := h.service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("failed to record payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	if exists {
		c.JSON(http.StatusOK, gin.H{"isExist": true})
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	payments, err := h.service.ListPayments(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.logger.WithError(err).Error("failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payments"})
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *BillingHandler) CreateCoupon(c *gin.Context) {
	var req model.Coupon
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	coupon, err := h.service.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCoupon) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("failed to create coupon")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *BillingHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.service.ListCoupons(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list coupons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve coupons"})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *BillingHandler) VerifyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	check, err := h.service.VerifyCoupon(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.WithError(err).Error("failed to verify coupon")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify coupon"})
		return
	}
	c.JSON(http.StatusOK, check)
}

// CreateIntent stages a charge with the payment provider and returns the
// client secret the frontend needs to complete it.
func (h *BillingHandler) CreateIntent(c *gin.Context) {
	var req struct {
		TotalAmount float64 `json:"total_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	clientSecret, err := h.intents.CreateIntent(c.Request.Context(), req.TotalAmount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("payment provider call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// RegisterBillingRoutes registers payment, coupon, and intent routes.
func (h *BillingHandler) RegisterBillingRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.RecordPayment)
	rg.GET("/payments/:email", h.ListPayments)
	rg.POST("/coupons", h.CreateCoupon)
	rg.GET("/coupons", h.ListCoupons)
	rg.POST("/verify-coupon", h.VerifyCoupon)
	rg.POST("/create-payment-intent", h.CreateIntent)
}
