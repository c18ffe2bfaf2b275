package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/models"
	"food-redistribution-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DonationHandler struct {
	Service    *donation.Service
	S3Uploader *s3.Uploader
}

type QuantityPayload struct {
	Unit  string  `json:"unit" binding:"required"`
	Value float64 `json:"value" binding:"required,gt=0"`
}

type CreateDonationPayload struct {
	FoodType      string          `json:"foodType"`
	FoodName      string          `json:"foodName"`
	DonorName     string          `json:"donorName"`
	Quantity      QuantityPayload `json:"quantity"`
	PickupAddress string          `json:"pickupAddress"`
	ContactPhone  string          `json:"contactPhone"`
	ExpiryDate    time.Time       `json:"expiryDate"`
}

// CreateDonation registers a new donation owned by the calling organization.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	var payload CreateDonationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newDonation := models.Donation{
		OrganizationID: organizationID,
		FoodType:       payload.FoodType,
		FoodName:       payload.FoodName,
		DonorName:      payload.DonorName,
		Quantity:       models.Quantity{Unit: payload.Quantity.Unit, Value: payload.Quantity.Value},
		PickupAddress:  payload.PickupAddress,
		ContactPhone:   payload.ContactPhone,
		ExpiryDate:     payload.ExpiryDate,
	}

	created, err := h.Service.CreateDonation(c.Request.Context(), &newDonation)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetDonationByID returns one donation by its donationID.
func (h *DonationHandler) GetDonationByID(c *gin.Context) {
	d, err := h.Service.GetDonationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetMyDonations lists the donations owned by the calling organization.
func (h *DonationHandler) GetMyDonations(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	donations, err := h.Service.ListDonationsByOrganization(c.Request.Context(), organizationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// GetAvailableDonations is the discovery feed: AVAILABLE donations offered
// by other organizations.
func (h *DonationHandler) GetAvailableDonations(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	donations, err := h.Service.ListAvailableExcluding(c.Request.Context(), organizationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// UpdateDonation applies a partial update to the caller's donation.
func (h *DonationHandler) UpdateDonation(c *gin.Context) {
	donationID := c.Param("id")

	var patch models.DonationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.requireOwnership(c, donationID); err != nil {
		return
	}

	updated, err := h.Service.UpdateDonation(c.Request.Context(), donationID, patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CancelDonation withdraws an AVAILABLE donation.
func (h *DonationHandler) CancelDonation(c *gin.Context) {
	donationID := c.Param("id")

	if err := h.requireOwnership(c, donationID); err != nil {
		return
	}

	cancelled, err := h.Service.CancelDonation(c.Request.Context(), donationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// DeleteDonation removes a donation outright, from any status.
func (h *DonationHandler) DeleteDonation(c *gin.Context) {
	donationID := c.Param("id")

	if err := h.requireOwnership(c, donationID); err != nil {
		return
	}

	if err := h.Service.DeleteDonation(c.Request.Context(), donationID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted successfully"})
}

// GetExpiringDonations lists AVAILABLE donations expiring within ?days
// (default 3).
func (h *DonationHandler) GetExpiringDonations(c *gin.Context) {
	days := 3
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
			return
		}
		days = parsed
	}

	donations, err := h.Service.ListExpiring(c.Request.Context(), days)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// GetExpiredDonations lists overdue donations the sweeper has not yet
// processed.
func (h *DonationHandler) GetExpiredDonations(c *gin.Context) {
	donations, err := h.Service.ListExpired(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// ReserveDonation claims an AVAILABLE donation for the calling organization.
func (h *DonationHandler) ReserveDonation(c *gin.Context) {
	donationID := c.Param("id")
	organizationID := c.GetString("organization_id")

	reserved, err := h.Service.Reserve(c.Request.Context(), donationID, organizationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reserved)
}

// UploadDonationPhoto stores a photo of the offered food in S3 and records
// its URL on the donation.
func (h *DonationHandler) UploadDonationPhoto(c *gin.Context) {
	donationID := c.Param("id")

	if err := h.requireOwnership(c, donationID); err != nil {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := fmt.Sprintf("donations/%s/%s%s", donationID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	existing, err := h.Service.GetDonationByID(c.Request.Context(), donationID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	existing.PhotoURL = url

	updated, err := h.Service.Store.Replace(c.Request.Context(), existing)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// requireOwnership rejects calls against a donation the caller does not
// own. Admin tokens bypass the check.
func (h *DonationHandler) requireOwnership(c *gin.Context, donationID string) error {
	if c.GetString("role") == auth.RoleAdmin {
		return nil
	}

	existing, err := h.Service.GetDonationByID(c.Request.Context(), donationID)
	if err != nil {
		writeServiceError(c, err)
		return err
	}
	if existing.OrganizationID != c.GetString("organization_id") {
		err := fmt.Errorf("organization does not own donation %s", donationID)
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this donation"})
		return err
	}
	return nil
}
