package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/transfer"
)

// ListTransfers handles GET /api/transfers?from=&to=&floorId=&tableId=.
func (h *Handler) ListTransfers(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	list, err := h.Transfers.List(c.Request.Context(), transfer.Filter{
		From:    from,
		To:      to,
		FloorID: c.Query("floorId"),
		TableID: c.Query("tableId"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetTransfer(c *gin.Context) {
	t, err := h.Transfers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTransfer(c *gin.Context) {
	if err := h.Transfers.Delete(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PruneTransfers handles POST /api/transfers/prune?days=30.
func (h *Handler) PruneTransfers(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(c, model.Invalid("days", "days must be a positive integer"))
			return
		}
		days = n
	}
	removed, err := h.Transfers.Prune(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
