package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autodialer/internal/calls"
	"autodialer/internal/reporting"
	"autodialer/pkg/logger"
)

func filterFrom(c *gin.Context) reporting.Filter {
	return reporting.Filter{Mode: calls.Mode(c.Query("mode"))}
}

func (h Handlers) reportError(c *gin.Context, err error) {
	if errors.Is(err, reporting.ErrInvalidRequest) {
		abortError(c, http.StatusBadRequest, "invalid report request")
		return
	}
	logger.FromGin(c).Error("report failed", "err", err)
	abortError(c, http.StatusInternalServerError, "report failed")
}

// ListCalls returns call history; with ?limit= the newest calls come first.
func (h Handlers) ListCalls(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	rows, err := h.Reports.Recent(c.Request.Context(), filterFrom(c), limit)
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": rows, "total": len(rows)})
}

func (h Handlers) Stats(c *gin.Context) {
	d, err := h.Reports.Dashboard(c.Request.Context(), filterFrom(c))
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) ListActivity(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	if h.Activity == nil {
		c.JSON(http.StatusOK, gin.H{"events": []any{}})
		return
	}
	evs, err := h.Activity.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("activity list failed", "err", err)
		abortError(c, http.StatusInternalServerError, "activity unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs})
}
