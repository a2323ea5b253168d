package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"autodialer/internal/audit"
	"autodialer/internal/campaign"
	"autodialer/internal/dialer"
	"autodialer/internal/reporting"
	"autodialer/internal/throttle"
	"autodialer/pkg/logger"
)

// Recorder receives import and quota counters. *metrics.Metrics implements it.
type Recorder interface {
	ContactsImported(imported, dropped int)
	QuotaRejected()
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Campaign *campaign.Campaign
	Dialer   *dialer.Session
	Reports  *reporting.Service
	Activity *audit.Service

	// Quota and Metrics are optional.
	Quota   throttle.Limiter
	Metrics Recorder

	MaxUploadBytes int64
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// reserve takes n dial attempts from the hourly quota. It writes the error
// response and returns false when the request must stop.
func (h Handlers) reserve(c *gin.Context, n int) bool {
	if h.Quota == nil || n <= 0 {
		return true
	}
	ok, err := h.Quota.Allow(c.Request.Context(), n)
	if err != nil {
		logger.FromGin(c).Error("quota check failed", "err", err)
		abortError(c, http.StatusInternalServerError, "quota check failed")
		return false
	}
	if !ok {
		if h.Metrics != nil {
			h.Metrics.QuotaRejected()
		}
		abortError(c, http.StatusTooManyRequests, throttle.ErrQuotaExceeded.Error())
		return false
	}
	return true
}

// bindOptionalJSON decodes the body into dst when one was sent.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// queryLimit parses ?limit=; absent means 0 (no limit).
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
