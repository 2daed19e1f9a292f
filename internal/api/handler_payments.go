package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
)

// QuoteTable handles GET /api/tables/:id/bill.
func (h *Handler) QuoteTable(c *gin.Context) {
	bill, err := h.Payments.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

type checkoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// Checkout handles POST /api/tables/:id/checkout.
func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	receipt, err := h.Payments.Checkout(c.Request.Context(), c.Param("id"), req.PaymentMethod, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// ListPayments handles GET /api/payments?from=&to=.
func (h *Handler) ListPayments(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	list, err := h.History.InRange(c.Request.Context(), from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
