// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshloaf/storefront-backend/internal/domain/cart"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart returns the current cart with derived totals
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	response, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AddItem adds a catalog item to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	response, err := h.cartService.AddItem(c.Request.Context(), userID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    response,
	})
}

// IncreaseItem increments an item's quantity
func (h *CartHandler) IncreaseItem(c *gin.Context) {
	h.adjust(c, h.cartService.IncreaseItem, "Quantity increased")
}

// DecreaseItem decrements an item's quantity, floored at 1
func (h *CartHandler) DecreaseItem(c *gin.Context) {
	h.adjust(c, h.cartService.DecreaseItem, "Quantity decreased")
}

// RemoveItem deletes an item from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.adjust(c, h.cartService.RemoveItem, "Item removed from cart")
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

func (h *CartHandler) adjust(c *gin.Context, fn func(ctx context.Context, userID uint, itemID int) (*cart.Response, error), message string) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item id",
		})
		return
	}

	response, err := fn(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    response,
	})
}
