package handlers

import (
	"context"
	"net/http"

	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/models"
	"food-redistribution-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AdminHandler struct {
	DB      *mongo.Database
	Service *donation.Service
	Hub     *socket.Hub
}

type AdminLoginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type DecisionPayload struct {
	Notes string `json:"notes"`
}

type OverrideStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

// Login authenticates an admin and returns a JWT.
func (h *AdminHandler) Login(c *gin.Context) {
	var payload AdminLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("admins")

	var admin models.Admin
	err := collection.FindOne(context.Background(), bson.M{"username": payload.Username}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up admin"})
		}
		return
	}

	if !auth.CheckPasswordHash(payload.Password, admin.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(admin.Username, auth.RoleAdmin, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetAllOrganizations lists every registered organization.
func (h *AdminHandler) GetAllOrganizations(c *gin.Context) {
	collection := h.DB.Collection("organizations")

	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query organizations"})
		return
	}
	defer cursor.Close(context.Background())

	var organizations []models.Organization
	if err = cursor.All(context.Background(), &organizations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode organizations"})
		return
	}
	if organizations == nil {
		organizations = []models.Organization{}
	}

	c.JSON(http.StatusOK, organizations)
}

// GetAllDonations lists every donation, optionally filtered by ?status.
func (h *AdminHandler) GetAllDonations(c *gin.Context) {
	var (
		donations []models.Donation
		err       error
	)
	if status := c.Query("status"); status != "" {
		donations, err = h.Service.ListDonationsByStatus(c.Request.Context(), status)
	} else {
		donations, err = h.Service.ListDonations(c.Request.Context())
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// GetPendingReservations is the admin inbox: every donation currently
// RESERVED and awaiting a decision.
func (h *AdminHandler) GetPendingReservations(c *gin.Context) {
	donations, err := h.Service.ListPendingReservations(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// ApproveReservation resolves a RESERVED donation to DONATED.
func (h *AdminHandler) ApproveReservation(c *gin.Context) {
	h.decide(c, donation.OutcomeApprove)
}

// RejectReservation resolves a RESERVED donation to REJECTED and clears its
// requester fields.
func (h *AdminHandler) RejectReservation(c *gin.Context) {
	h.decide(c, donation.OutcomeReject)
}

func (h *AdminHandler) decide(c *gin.Context, outcome donation.Outcome) {
	donationID := c.Param("id")
	adminID := c.GetString("subject")

	// Notes are optional; an empty body is fine.
	var payload DecisionPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	decided, entry, err := h.Service.Decide(c.Request.Context(), donationID, adminID, outcome, payload.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if entry != nil {
		h.Hub.SendDecision(entry.OrganizationID, socket.DecisionEvent{
			RequestID:  entry.RequestID,
			DonationID: entry.DonationID,
			Outcome:    entry.Status,
			Notes:      entry.Notes,
		})
	}

	c.JSON(http.StatusOK, decided)
}

// OverrideStatus overwrites a donation's status unconditionally. Escape
// hatch for administrative correction; it bypasses every transition guard.
func (h *AdminHandler) OverrideStatus(c *gin.Context) {
	donationID := c.Param("id")

	var payload OverrideStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Service.OverrideStatus(c.Request.Context(), donationID, payload.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
