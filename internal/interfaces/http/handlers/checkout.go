// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshloaf/storefront-backend/internal/domain/checkout"
	"github.com/freshloaf/storefront-backend/internal/domain/user"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler drives the review-and-place flow
type CheckoutHandler struct {
	checkoutService *checkout.Service
	userService     *user.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, userService *user.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		userService:     userService,
	}
}

// GetSummary returns the checkout session, cart lines, and totals
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	summary, err := h.checkoutService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// BeginReview moves from browsing into the order review page. Delivery
// details are pre-filled from the profile where known.
func (h *CheckoutHandler) BeginReview(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	prefill := checkout.CustomerDetails{}
	if profile, err := h.userService.GetProfile(c.Request.Context(), userID); err == nil {
		prefill.Name = profile.GetDisplayName()
		prefill.Email = profile.Email
		prefill.Phone = profile.Phone
	}

	summary, err := h.checkoutService.BeginReview(c.Request.Context(), userID, prefill)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order review started",
		"data":    summary,
	})
}

// Back returns from review to browsing, cart intact
func (h *CheckoutHandler) Back(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	summary, err := h.checkoutService.Back(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Returned to browsing",
		"data":    summary,
	})
}

// Place submits the order with the given delivery details
func (h *CheckoutHandler) Place(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	var req checkout.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	confirmation, err := h.checkoutService.Place(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    confirmation,
	})
}

// ContinueShopping leaves the confirmation page for a fresh session
func (h *CheckoutHandler) ContinueShopping(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		middleware.RedirectUnauthenticated(c)
		return
	}

	summary, err := h.checkoutService.ContinueShopping(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ready for a new order",
		"data":    summary,
	})
}
