package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

type SupplierHandler struct {
	supplierService *service.SupplierService
}

func NewSupplierHandler(supplierService *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) List(c *gin.Context) {
	list, err := h.supplierService.ListSuppliers()
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Suppliers retrieved", list)
}

func (h *SupplierHandler) GetProfile(c *gin.Context) {
	sup, err := h.supplierService.GetProfile(middleware.GetUserID(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Supplier profile retrieved", sup)
}

func (h *SupplierHandler) UpsertProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	sup, err := h.supplierService.UpsertProfile(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Supplier profile saved", sup)
}

func (h *SupplierHandler) ListLinks(c *gin.Context) {
	list, err := h.supplierService.ListLinks(middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Material links retrieved", list)
}

func (h *SupplierHandler) LinkMaterial(c *gin.Context) {
	var req service.LinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	link, err := h.supplierService.LinkMaterial(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Material linked", link)
}

func (h *SupplierHandler) UnlinkMaterial(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid link id")
		return
	}

	if err := h.supplierService.UnlinkMaterial(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), id); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Material unlinked", nil)
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	sup, err := h.supplierService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Supplier created", sup)
}

func (h *SupplierHandler) SetActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid supplier id")
		return
	}

	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.supplierService.SetActive(id, *req.IsActive); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Supplier updated", nil)
}
