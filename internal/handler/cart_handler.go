package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) Add(c *gin.Context) {
	var req struct {
		MaterialID int64 `json:"materialId" binding:"required"`
		Qty        int   `json:"qty" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.cartService.Add(c.Request.Context(), middleware.GetUserID(c), req.MaterialID, req.Qty); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Added to cart", nil)
}

func (h *CartHandler) Get(c *gin.Context) {
	summary, err := h.cartService.Summary(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Cart retrieved", summary)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid cart item id")
		return
	}

	var req struct {
		Qty int `json:"qty" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.cartService.UpdateQty(c.Request.Context(), middleware.GetUserID(c), itemID, req.Qty); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Cart item updated", nil)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid cart item id")
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Cart item removed", nil)
}
