package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

type BulkRequestHandler struct {
	bidService *service.BidService
}

func NewBulkRequestHandler(bidService *service.BidService) *BulkRequestHandler {
	return &BulkRequestHandler{bidService: bidService}
}

func (h *BulkRequestHandler) Create(c *gin.Context) {
	var req struct {
		MaterialID int64      `json:"materialId" binding:"required"`
		Qty        int        `json:"qty" binding:"required"`
		Deadline   *time.Time `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	br, err := h.bidService.CreateRequest(c.Request.Context(),
		middleware.GetUserID(c), middleware.GetRole(c), req.MaterialID, req.Qty, req.Deadline)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Bulk request created", br)
}

func (h *BulkRequestHandler) List(c *gin.Context) {
	list, err := h.bidService.ListRequests(middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bulk requests retrieved", list)
}

func (h *BulkRequestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid bulk request id")
		return
	}

	br, err := h.bidService.GetRequest(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bulk request retrieved", br)
}

func (h *BulkRequestHandler) Close(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid bulk request id")
		return
	}

	br, err := h.bidService.CloseRequest(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Bulk request closed", br)
}
