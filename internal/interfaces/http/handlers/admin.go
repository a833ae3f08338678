// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/domain/user"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/middleware"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

// AdminHandler handles the admin dashboard endpoints
type AdminHandler struct {
	config       *config.Config
	redisClient  *redis.Client
	userService  *user.Service
	adminService *user.AdminService
	orderService *order.Service
	broker       *stream.Broker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cfg *config.Config, redisClient *redis.Client, userService *user.Service, adminService *user.AdminService, orderService *order.Service, broker *stream.Broker) *AdminHandler {
	return &AdminHandler{
		config:       cfg,
		redisClient:  redisClient,
		userService:  userService,
		adminService: adminService,
		orderService: orderService,
		broker:       broker,
	}
}

// Login signs an admin in. Non-admin credentials are rejected here even
// when valid; the regular login endpoint still accepts them. A
// successful login primes the cached admin verdict.
func (h *AdminHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	response, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !response.User.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"error":    "This account does not have admin access",
			"redirect": "/admin/login",
		})
		return
	}

	h.redisClient.Set(c.Request.Context(),
		middleware.AdminCacheKey(response.User.ID), "1", h.config.Security.AdminCacheTTL)

	c.JSON(http.StatusOK, gin.H{
		"message": "Admin login successful",
		"data":    response,
	})
}

// Setup promotes an existing account to admin. Guarded by the setup
// key so the first admin can be created without another admin.
func (h *AdminHandler) Setup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		SetupKey string `json:"setup_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if h.config.Security.AdminSetupKey == "" || req.SetupKey != h.config.Security.AdminSetupKey {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Invalid setup key",
		})
		return
	}

	promoted, err := h.adminService.PromoteToAdmin(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account promoted to admin",
		"data":    promoted,
	})
}

// ListOrders returns every order in the store, newest first
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"count": len(orders),
	})
}

// UpdateOrderStatus sets an order's status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order id",
		})
		return
	}

	var req struct {
		Status order.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	updated, err := h.orderService.UpdateStatus(c.Request.Context(), uint(orderID), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    updated,
	})
}

// DeleteOrder removes an order
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order id",
		})
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), uint(orderID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted",
	})
}

// ListUsers returns every registered account
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  users,
		"count": len(users),
	})
}

// DeleteUser removes an account and its orders
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user id",
		})
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), uint(userID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted",
	})
}

// Feed streams order and user events to the dashboard as server-sent
// events. The subscription is released when the client disconnects.
func (h *AdminHandler) Feed(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, cancel := h.broker.Subscribe(c.Request.Context(), stream.ChannelOrders, stream.ChannelUsers)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
