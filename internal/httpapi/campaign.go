package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autodialer/internal/audit"
	"autodialer/internal/campaign"
)

func (h Handlers) GetCampaign(c *gin.Context) {
	out := gin.H{
		"progress":    h.Campaign.Progress(),
		"current":     nil,
		"next_action": h.Campaign.NextAction(h.Dialer),
	}
	if cur, ok := h.Campaign.Current(); ok {
		out["current"] = cur
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) StartCampaign(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	if err := h.Campaign.Start(); err != nil {
		if errors.Is(err, campaign.ErrNoContacts) {
			abortError(c, http.StatusConflict, "no contacts loaded")
			return
		}
		abortError(c, http.StatusInternalServerError, "campaign start failed")
		return
	}
	p := h.Campaign.Progress()
	h.logActivity(c, audit.EventTypeCampaignStarted, "campaign started", map[string]any{"contacts": p.Total})
	c.JSON(http.StatusOK, p)
}

func (h Handlers) PauseCampaign(c *gin.Context) {
	if err := h.Campaign.Pause(); err != nil {
		abortError(c, http.StatusConflict, "campaign is not running")
		return
	}
	p := h.Campaign.Progress()
	h.logActivity(c, audit.EventTypeCampaignPaused, "campaign paused", map[string]any{"position": p.Position})
	c.JSON(http.StatusOK, p)
}

func (h Handlers) SkipContact(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	if !h.Campaign.Skip() {
		abortError(c, http.StatusConflict, "already at the last contact")
		return
	}
	c.JSON(http.StatusOK, h.Campaign.Progress())
}

// StepCampaign runs one auto-dial tick. Ticks that ring a phone take one
// attempt from the hourly quota.
func (h Handlers) StepCampaign(c *gin.Context) {
	release := h.Dialer.Exclusive()
	defer release()

	if h.Campaign.NextAction(h.Dialer).Dials() && !h.reserve(c, 1) {
		return
	}
	res := h.Campaign.Step(h.Dialer, -1)
	if res.Action == campaign.ActionComplete {
		h.logActivity(c, audit.EventTypeCampaignCompleted, "campaign completed", map[string]any{"contacts": res.Progress.Total})
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) logActivity(c *gin.Context, typ audit.EventType, msg string, meta map[string]any) {
	if h.Activity == nil {
		return
	}
	h.Activity.Log(c.Request.Context(), typ, msg, meta)
}
