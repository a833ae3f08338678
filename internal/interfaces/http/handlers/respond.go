// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

// respondError maps a service error onto an HTTP status and JSON body.
// Validation errors carry the offending field names so clients can
// highlight them.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindStore:
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": err.Error()}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}

	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
