package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/customer"
	"restaurant-pos-backend/internal/floorplan"
	"restaurant-pos-backend/internal/menu"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/payment"
	"restaurant-pos-backend/internal/report"
	"restaurant-pos-backend/internal/tables"
	"restaurant-pos-backend/internal/transfer"
)

// ActorHeader names the staff member performing a request.
const ActorHeader = "X-Actor"

// Services groups the domain services the API exposes.
type Services struct {
	Tables    *tables.Service
	Floorplan *floorplan.Registry
	Transfers *transfer.Log
	Customers *customer.Ledger
	Menu      *menu.Service
	Payments  *payment.Service
	History   *payment.History
	Reports   *report.Aggregator
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	Services
	defaultActor string
	loc          *time.Location
	log          logrus.FieldLogger
}

// NewHandler creates a new API handler. Requests without an X-Actor header
// are attributed to defaultActor, and date-only query parameters are read in
// loc.
func NewHandler(s Services, defaultActor string, loc *time.Location, log logrus.FieldLogger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Services:     s,
		defaultActor: defaultActor,
		loc:          loc,
		log:          log.WithField("component", "api"),
	}
}

func (h *Handler) actor(c *gin.Context) string {
	if a := strings.TrimSpace(c.GetHeader(ActorHeader)); a != "" {
		return a
	}
	return h.defaultActor
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	var rerr *model.RuleError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &rerr):
		c.JSON(http.StatusConflict, gin.H{"error": rerr.Message, "code": rerr.Code})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// parseTime reads an RFC 3339 timestamp or a date. When endOfDay is set a
// bare date is moved to the following midnight so that it can close a
// half-open window.
func (h *Handler) parseTime(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		return time.Time{}, model.Invalid("date", "use YYYY-MM-DD or RFC 3339")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// window reads the from and to query parameters.
func (h *Handler) window(c *gin.Context) (time.Time, time.Time, error) {
	from, err := h.parseTime(c.Query("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := h.parseTime(c.Query("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, model.Invalid("to", "end must be after start")
	}
	return from, to, nil
}
