package handlers

import (
	"net/http"

	"food-redistribution-api-server/internal/donation"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Service *donation.Service
}

// GetMyRequests lists the calling organization's request ledger: pending
// reservations and decided outcomes with their notification flag.
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	requests, err := h.Service.ListRequestsByOrganization(c.Request.Context(), organizationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// MarkNotificationShown acknowledges a decision outcome so the client does
// not surface it again.
func (h *RequestHandler) MarkNotificationShown(c *gin.Context) {
	requestID := c.Param("id")

	updated, err := h.Service.MarkNotificationShown(c.Request.Context(), requestID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetPendingRequests lists unresolved ledger entries, for the admin
// dashboard.
func (h *RequestHandler) GetPendingRequests(c *gin.Context) {
	requests, err := h.Service.ListPendingRequests(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}
