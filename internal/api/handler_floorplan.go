package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/floorplan"
)

func (h *Handler) ListFloors(c *gin.Context) {
	list, err := h.Floorplan.ListFloors(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetFloor(c *gin.Context) {
	f, err := h.Floorplan.GetFloor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) CreateFloor(c *gin.Context) {
	var in floorplan.FloorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Floorplan.CreateFloor(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFloor(c *gin.Context) {
	var p floorplan.FloorPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Floorplan.UpdateFloor(c.Request.Context(), c.Param("id"), p, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFloor(c *gin.Context) {
	if err := h.Floorplan.DeleteFloor(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTableCategories(c *gin.Context) {
	list, err := h.Floorplan.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetTableCategory(c *gin.Context) {
	cat, err := h.Floorplan.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) CreateTableCategory(c *gin.Context) {
	var in floorplan.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.Floorplan.CreateCategory(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateTableCategory(c *gin.Context) {
	var p floorplan.CategoryPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.Floorplan.UpdateCategory(c.Request.Context(), c.Param("id"), p, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteTableCategory(c *gin.Context) {
	if err := h.Floorplan.DeleteCategory(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTableConfigs(c *gin.Context) {
	list, err := h.Floorplan.ListTableConfigs(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTableConfig handles GET /api/tables/:id/config.
func (h *Handler) GetTableConfig(c *gin.Context) {
	cfg, err := h.Floorplan.ConfigForTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) CreateTableConfig(c *gin.Context) {
	var in floorplan.TableConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := h.Floorplan.CreateTableConfig(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) UpdateTableConfig(c *gin.Context) {
	var p floorplan.TableConfigPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := h.Floorplan.UpdateTableConfig(c.Request.Context(), c.Param("id"), p, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) DeleteTableConfig(c *gin.Context) {
	if err := h.Floorplan.DeleteTableConfig(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTableHistory handles GET /api/table-history, optionally narrowed to one
// table or floor with ?subjectId=.
func (h *Handler) GetTableHistory(c *gin.Context) {
	list, err := h.Floorplan.History(c.Request.Context(), c.Query("subjectId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
