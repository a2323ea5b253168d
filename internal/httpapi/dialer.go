package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autodialer/internal/audit"
	"autodialer/internal/calls"
	"autodialer/internal/contacts"
	"autodialer/internal/dialer"
)

type setModeRequest struct {
	Mode calls.Mode `json:"mode"`
}

type dialRequest struct {
	ContactID  *int `json:"contact_id"`
	MaxRedials *int `json:"max_redials"`
}

type powerRequest struct {
	ContactIDs []int `json:"contact_ids"`
	Count      int   `json:"count"`
}

func (h Handlers) GetDialer(c *gin.Context) {
	c.JSON(http.StatusOK, h.Dialer.View())
}

func (h Handlers) SetMode(c *gin.Context) {
	var req setModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !req.Mode.Valid() {
		abortError(c, http.StatusBadRequest, "mode must be single or power")
		return
	}

	release := h.Dialer.Exclusive()
	defer release()
	if !h.Dialer.SetMode(req.Mode) {
		abortError(c, http.StatusConflict, "a call is in flight")
		return
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

// Dial starts a single-mode call to contact_id, or to the campaign's current
// contact when none is given.
func (h Handlers) Dial(c *gin.Context) {
	var req dialRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid json")
		return
	}

	maxRedials := -1
	if req.MaxRedials != nil {
		maxRedials = *req.MaxRedials
		if maxRedials < 0 || maxRedials > dialer.MaxRedialLimit {
			abortError(c, http.StatusBadRequest, "max_redials must be within 0..10")
			return
		}
	}

	release := h.Dialer.Exclusive()
	defer release()

	var (
		target contacts.Contact
		ok     bool
	)
	if req.ContactID != nil {
		target, ok = h.Campaign.Find(*req.ContactID)
	} else {
		target, ok = h.Campaign.Current()
	}
	if !ok {
		abortError(c, http.StatusNotFound, "contact not found")
		return
	}

	if h.Dialer.Mode() != calls.ModeSingle || h.Dialer.IsDialing() {
		abortError(c, http.StatusConflict, "dialer is busy or not in single mode")
		return
	}
	if !h.reserve(c, 1) {
		return
	}
	if !h.Dialer.Dial(target, maxRedials) {
		abortError(c, http.StatusConflict, "dialer is busy or not in single mode")
		return
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

func (h Handlers) Redial(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	cur, ok := h.Dialer.Current()
	if !ok || !h.Dialer.IsDialing() || cur.Status.State != calls.StateRedialing {
		abortError(c, http.StatusConflict, "no call waiting for a redial")
		return
	}
	if !h.reserve(c, 1) {
		return
	}
	if !h.Dialer.Redial() {
		abortError(c, http.StatusConflict, "no call waiting for a redial")
		return
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

func (h Handlers) EndCall(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	if !h.Dialer.EndCall() {
		abortError(c, http.StatusConflict, "no call in flight")
		return
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

// DialPower rings a power batch: the listed contact_ids, or the next count
// (default: configured batch size) contacts of the campaign.
func (h Handlers) DialPower(c *gin.Context) {
	var req powerRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid json")
		return
	}

	release := h.Dialer.Exclusive()
	defer release()

	if h.Dialer.Mode() != calls.ModePower {
		abortError(c, http.StatusConflict, "dialer is not in power mode")
		return
	}
	if len(h.Dialer.ActiveBatch()) > 0 {
		abortError(c, http.StatusConflict, "a batch is still in flight")
		return
	}

	size := h.Dialer.Config().BatchSize
	if req.Count < 0 || req.Count > dialer.MaxBatchSize || len(req.ContactIDs) > dialer.MaxBatchSize {
		abortError(c, http.StatusBadRequest, "batch size must be within 1..10")
		return
	}
	if req.Count > 0 {
		size = min(size, req.Count)
	}

	var targets []contacts.Contact
	fromCampaign := len(req.ContactIDs) == 0
	if fromCampaign {
		targets = h.Campaign.PeekBatch(size)
	} else {
		for _, id := range req.ContactIDs {
			ct, ok := h.Campaign.Find(id)
			if !ok {
				abortError(c, http.StatusNotFound, "contact not found")
				return
			}
			targets = append(targets, ct)
		}
		if len(targets) > size {
			targets = targets[:size]
		}
	}
	if len(targets) == 0 {
		abortError(c, http.StatusConflict, "no contacts left to dial")
		return
	}

	if !h.reserve(c, len(targets)) {
		return
	}
	if fromCampaign {
		targets = h.Campaign.NextBatch(len(targets))
	}
	n := h.Dialer.DialBatch(targets)
	if n == 0 {
		abortError(c, http.StatusConflict, "batch could not be dialed")
		return
	}
	if h.Activity != nil {
		h.Activity.PowerBatchDialed(c.Request.Context(), h.Dialer.BatchID(), n)
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

func (h Handlers) ClearBatch(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	if !h.Dialer.ClearBatch() {
		abortError(c, http.StatusConflict, "no finished batch to clear")
		return
	}
	c.JSON(http.StatusOK, h.Dialer.View())
}

func (h Handlers) ResetDialer(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	h.Dialer.Reset()
	h.logActivity(c, audit.EventTypeDialerReset, "dialer reset", nil)
	c.JSON(http.StatusOK, h.Dialer.View())
}
