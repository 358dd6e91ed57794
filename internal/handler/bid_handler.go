package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

type BidHandler struct {
	bidService *service.BidService
}

func NewBidHandler(bidService *service.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

func (h *BidHandler) Place(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid bulk request id")
		return
	}

	var req struct {
		UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
		Note      string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	bid, err := h.bidService.PlaceBid(c.Request.Context(),
		middleware.GetUserID(c), middleware.GetRole(c), requestID, req.UnitPrice, req.Note)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Bid placed", bid)
}

func (h *BidHandler) Update(c *gin.Context) {
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid bid id")
		return
	}

	var req struct {
		UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
		Note      string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	bid, err := h.bidService.UpdateBid(c.Request.Context(), middleware.GetUserID(c), bidID, req.UnitPrice, req.Note)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bid updated", bid)
}

func (h *BidHandler) List(c *gin.Context) {
	list, err := h.bidService.ListBids(middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bids retrieved", list)
}

func (h *BidHandler) Accept(c *gin.Context) {
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid bid id")
		return
	}

	result, err := h.bidService.AcceptBid(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), bidID)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bid accepted", result)
}
