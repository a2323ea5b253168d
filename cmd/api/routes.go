package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autodialer/internal/httpapi"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, metricsHandler http.Handler) {
	r.GET("/healthz", h.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/v1")

	contactsGroup := v1.Group("/contacts")
	{
		contactsGroup.POST("/import", h.ImportContacts)
		contactsGroup.GET("", h.ListContacts)
		contactsGroup.GET("/export", h.ExportContacts)
	}

	campaignGroup := v1.Group("/campaign")
	{
		campaignGroup.GET("", h.GetCampaign)
		campaignGroup.POST("/start", h.StartCampaign)
		campaignGroup.POST("/pause", h.PauseCampaign)
		campaignGroup.POST("/skip", h.SkipContact)
		campaignGroup.POST("/step", h.StepCampaign)
	}

	dialerGroup := v1.Group("/dialer")
	{
		dialerGroup.GET("", h.GetDialer)
		dialerGroup.POST("/mode", h.SetMode)
		dialerGroup.POST("/dial", h.Dial)
		dialerGroup.POST("/redial", h.Redial)
		dialerGroup.POST("/end", h.EndCall)
		dialerGroup.POST("/power", h.DialPower)
		dialerGroup.POST("/power/clear", h.ClearBatch)
		dialerGroup.POST("/reset", h.ResetDialer)
	}

	v1.GET("/calls", h.ListCalls)
	v1.GET("/stats", h.Stats)
	v1.GET("/activity", h.ListActivity)
}
