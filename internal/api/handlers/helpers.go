package handlers

import (
	"errors"
	"net/http"

	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

// writeServiceError maps the core error kinds onto HTTP statuses:
// validation 400, unknown identity 404, status/ownership precondition 409,
// transient store failure 503.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *donation.ValidationError
	var stateErr *donation.StateError
	var storeErr *store.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
