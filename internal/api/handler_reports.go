package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/report"
)

// reportHandler adapts one aggregator projection to GET /api/reports/<name>.
func reportHandler[T any](h *Handler, project func(*report.Aggregator, context.Context, report.Window) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := h.window(c)
		if err != nil {
			h.writeError(c, err)
			return
		}
		out, err := project(h.Reports, c.Request.Context(), report.Window{Start: from, End: to})
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ExportReport handles GET /api/reports/export and returns a CSV file.
func (h *Handler) ExportReport(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Reports.ExportCSV(c.Request.Context(), &buf, report.Window{Start: from, End: to}); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bao-cao-doanh-thu.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
