package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/menu"
	"restaurant-pos-backend/internal/model"
)

// ListMenu handles GET /api/menu. ?q= searches, ?categoryId= narrows to one
// category and ?available=true hides unavailable items.
func (h *Handler) ListMenu(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		items []model.MenuItem
		err   error
	)
	switch {
	case c.Query("q") != "":
		items, err = h.Menu.Search(ctx, c.Query("q"))
	case c.Query("categoryId") != "":
		items, err = h.Menu.ByCategory(ctx, c.Query("categoryId"))
	case c.Query("available") == "true":
		items, err = h.Menu.Available(ctx)
	default:
		items, err = h.Menu.List(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.Menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var in menu.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.Menu.Create(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var p menu.ItemPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.Menu.Update(c.Request.Context(), c.Param("id"), p, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	if err := h.Menu.Delete(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetMenu handles POST /api/menu/reset and restores the default menu.
func (h *Handler) ResetMenu(c *gin.Context) {
	if err := h.Menu.ResetToDefault(c.Request.Context(), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMenuCategories(c *gin.Context) {
	list, err := h.Menu.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateMenuCategory(c *gin.Context) {
	var in menu.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.Menu.CreateCategory(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateMenuCategory(c *gin.Context) {
	var in menu.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.Menu.UpdateCategory(c.Request.Context(), c.Param("id"), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteMenuCategory(c *gin.Context) {
	if err := h.Menu.DeleteCategory(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
