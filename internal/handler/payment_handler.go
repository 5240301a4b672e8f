package handler

import (
	"errors"
	"net/http"

	"payflow/internal/middleware"
	"payflow/internal/repository"
	"payflow/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	intents  *service.IntentService
	payments *repository.PaymentRepository
}

func NewPaymentHandler(intents *service.IntentService, payments *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{intents: intents, payments: payments}
}

// Create issues a new payment intent. Amount is a decimal in major currency
// units; the issuer converts to minor units.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req struct {
		PayerID     string  `json:"payer_id" binding:"required"`
		Amount      float64 `json:"amount" binding:"required,gt=0"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payer_id and a positive amount are required"})
		return
	}
	res, err := h.intents.CreateIntent(c.Request.Context(), req.PayerID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create payment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": res.Token, "reference": res.Reference})
}

// Get returns one attempt; payers can only read their own.
func (h *PaymentHandler) Get(c *gin.Context) {
	payerID := middleware.GetPayerID(c)
	att, err := h.payments.GetByReference(c.Request.Context(), c.Param("reference"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if att.PayerID != payerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, att)
}

// List returns the authenticated payer's attempts, newest first.
func (h *PaymentHandler) List(c *gin.Context) {
	payerID := middleware.GetPayerID(c)
	out, err := h.payments.ListByPayer(c.Request.Context(), payerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}
