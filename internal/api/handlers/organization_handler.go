package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrganizationHandler struct {
	DB *mongo.Database
}

type RegisterOrganizationPayload struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Phone       string `json:"phone" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new organization account.
func (h *OrganizationHandler) Register(c *gin.Context) {
	var payload RegisterOrganizationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("organizations")

	count, err := collection.CountDocuments(context.Background(), bson.M{"email": payload.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for organization"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An organization with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(payload.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newOrg := models.Organization{
		OrganizationID:   fmt.Sprintf("ORG-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:             payload.Name,
		Email:            payload.Email,
		Password:         hashedPassword,
		Phone:            payload.Phone,
		Address:          payload.Address,
		Type:             payload.Type,
		Description:      payload.Description,
		RegistrationDate: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newOrg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register organization"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newOrg.ID = oid
	}

	c.JSON(http.StatusCreated, newOrg)
}

// Login authenticates an organization and returns a JWT.
func (h *OrganizationHandler) Login(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("organizations")

	var org models.Organization
	err := collection.FindOne(context.Background(), bson.M{"email": payload.Email}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up organization"})
		}
		return
	}

	if !auth.CheckPasswordHash(payload.Password, org.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(org.Email, auth.RoleOrganization, org.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "organization": org})
}

// GetMyOrganization returns the calling organization's profile.
func (h *OrganizationHandler) GetMyOrganization(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	collection := h.DB.Collection("organizations")
	var org models.Organization
	err := collection.FindOne(context.Background(), bson.M{"organizationID": organizationID}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve organization"})
		}
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateMyOrganization applies a partial profile update.
func (h *OrganizationHandler) UpdateMyOrganization(c *gin.Context) {
	organizationID := c.GetString("organization_id")

	var patch models.OrganizationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	collection := h.DB.Collection("organizations")
	result, err := collection.UpdateOne(context.Background(), bson.M{"organizationID": organizationID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization updated successfully"})
}

// DeleteOrganization removes an organization account (admin only).
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	organizationID := c.Param("id")

	collection := h.DB.Collection("organizations")
	result, err := collection.DeleteOne(context.Background(), bson.M{"organizationID": organizationID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}
