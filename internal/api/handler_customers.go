package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/customer"
	"restaurant-pos-backend/internal/model"
)

// ListCustomers handles GET /api/customers with optional q, from, to,
// paymentMethod, minAmount and maxAmount filters.
func (h *Handler) ListCustomers(c *gin.Context) {
	var f customer.SearchFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.Customers.Search(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	cust, err := h.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// GetCustomerByPhone handles GET /api/customers/by-phone/:phone.
func (h *Handler) GetCustomerByPhone(c *gin.Context) {
	cust, err := h.Customers.GetByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// CreateCustomer handles POST /api/customers. An existing customer with the
// same phone is returned unchanged.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var in customer.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	cust, err := h.Customers.CreateCustomer(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var p customer.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	cust, err := h.Customers.Update(c.Request.Context(), c.Param("id"), p, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// GetCustomerOrders handles GET /api/customers/:id/orders?from=&to=.
func (h *Handler) GetCustomerOrders(c *gin.Context) {
	from, err := h.parseTime(c.Query("from"), false)
	if err != nil {
		h.writeError(c, err)
		return
	}
	to, err := h.parseTime(c.Query("to"), true)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if raw := c.Query("to"); len(raw) == len("2006-01-02") {
		// Orders takes an inclusive end; keep the whole day.
		to = to.Add(-time.Nanosecond)
	}
	list, err := h.Customers.Orders(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateCustomerOrder(c *gin.Context) {
	var in customer.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Customers.CreateOrder(c.Request.Context(), in, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetCustomerOrder(c *gin.Context) {
	order, err := h.Customers.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetCustomerStatistics(c *gin.Context) {
	stats, err := h.Customers.Statistics(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ExportCustomers(c *gin.Context) {
	snap, err := h.Customers.Export(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ImportCustomers handles POST /api/customers/import and replaces both
// collections.
func (h *Handler) ImportCustomers(c *gin.Context) {
	var snap customer.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Customers.Import(c.Request.Context(), snap, h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type migrateRequest struct {
	Bookings []model.Booking `json:"bookings"`
}

// MigrateBookings handles POST /api/customers/migrate.
func (h *Handler) MigrateBookings(c *gin.Context) {
	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.Customers.MigrateFromBookings(c.Request.Context(), req.Bookings, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": n})
}
