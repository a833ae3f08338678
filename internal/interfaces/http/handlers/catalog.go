// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshloaf/storefront-backend/internal/domain/catalog"
)

// CatalogHandler serves the fixed product catalog
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListItems returns the catalog grouped by category. An optional
// category query filters to one group.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	if raw := c.Query("category"); raw != "" {
		category := catalog.Category(raw)
		items := catalog.ItemsByCategory(category)
		if items == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown category",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{string(category): items},
		})
		return
	}

	grouped := gin.H{}
	for _, category := range catalog.Categories() {
		grouped[string(category)] = catalog.ItemsByCategory(category)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": grouped,
	})
}

// GetItem returns one catalog item by id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item id",
		})
		return
	}

	item, err := catalog.ItemByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": item,
	})
}
