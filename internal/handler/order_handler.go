package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

type OrderHandler struct {
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

func NewOrderHandler(checkoutService *service.CheckoutService, orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{checkoutService: checkoutService, orderService: orderService}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req struct {
		ItemIDs         []int64              `json:"cartItemIds"`
		Address         service.AddressInput `json:"address" binding:"required"`
		PaymentMethod   models.PaymentMethod `json:"paymentMethod" binding:"required"`
		DeliveryCharges *decimal.Decimal     `json:"deliveryCharges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c),
		service.CheckoutInput{
			ItemIDs:         req.ItemIDs,
			Address:         req.Address,
			PaymentMethod:   req.PaymentMethod,
			DeliveryCharges: req.DeliveryCharges,
		})
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Order placed", order)
}

func (h *OrderHandler) List(c *gin.Context) {
	list, err := h.orderService.List(middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Orders retrieved", list)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid order id")
		return
	}

	order, err := h.orderService.Get(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Order retrieved", order)
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid order id")
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.orderService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Order status updated", order)
}

func (h *OrderHandler) CreateReview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid order id")
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	review, err := h.orderService.CreateReview(c.Request.Context(), middleware.GetUserID(c), id, req.Rating, req.Comment)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Review created", review)
}

func (h *OrderHandler) ListReviews(c *gin.Context) {
	list, err := h.orderService.ListReviews(middleware.GetUserID(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Reviews retrieved", list)
}

func (h *OrderHandler) SalesReport(c *gin.Context) {
	rows, err := h.orderService.SalesReport(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Sales report generated", rows)
}
