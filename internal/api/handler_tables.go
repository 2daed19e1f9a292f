package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/tables"
)

// ListTables handles GET /api/tables with optional status, floorId and
// categoryId filters.
func (h *Handler) ListTables(c *gin.Context) {
	list, err := h.Tables.List(c.Request.Context(), tables.Filter{
		Status:     model.Status(c.Query("status")),
		FloorID:    c.Query("floorId"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetTable(c *gin.Context) {
	t, err := h.Tables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTable(c *gin.Context) {
	var in tables.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tables.Create(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTable(c *gin.Context) {
	var in tables.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tables.Update(c.Request.Context(), c.Param("id"), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTable(c *gin.Context) {
	if err := h.Tables.Delete(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTransitions handles GET /api/tables/:id/transitions.
func (h *Handler) GetTransitions(c *gin.Context) {
	next, err := h.Tables.Transitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": next})
}

type changeStatusRequest struct {
	Status  model.Status   `json:"status" binding:"required"`
	Booking *model.Booking `json:"booking"`
}

// ChangeStatus handles PUT /api/tables/:id/status.
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tables.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, req.Booking, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// BookTable handles POST /api/tables/:id/booking.
func (h *Handler) BookTable(c *gin.Context) {
	var b model.Booking
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tables.Book(c.Request.Context(), c.Param("id"), b, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type orderRequest struct {
	Items []model.OrderItem `json:"orderItems"`
}

// ReplaceOrder handles PUT /api/tables/:id/order.
func (h *Handler) ReplaceOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tables.UpdateOrder(c.Request.Context(), c.Param("id"), req.Items, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type addItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// AddOrderItem handles POST /api/tables/:id/order/items. The menu item is
// snapshotted at its current price; a line for the same item and notes is
// topped up instead of repeated.
func (h *Handler) AddOrderItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ctx := c.Request.Context()

	line, err := h.Menu.Snapshot(ctx, req.MenuItemID, req.Quantity, req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	t, err := h.Tables.AddItem(ctx, c.Param("id"), line, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetTransferTargets handles GET /api/tables/:id/transfer-targets.
func (h *Handler) GetTransferTargets(c *gin.Context) {
	list, err := h.Tables.TransferTargets(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// TransferTable handles POST /api/tables/transfer.
func (h *Handler) TransferTable(c *gin.Context) {
	var req tables.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.TransferredBy == "" {
		req.TransferredBy = h.actor(c)
	}
	rec, err := h.Tables.Transfer(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SyncTableConfigs handles POST /api/tables/sync-configs.
func (h *Handler) SyncTableConfigs(c *gin.Context) {
	n, err := h.Tables.SyncConfigs(c.Request.Context(), h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": n})
}
