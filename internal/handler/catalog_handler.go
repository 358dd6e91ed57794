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

type CatalogHandler struct {
	catalogService   *service.CatalogService
	inventoryService *service.InventoryService
}

func NewCatalogHandler(catalogService *service.CatalogService, inventoryService *service.InventoryService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, inventoryService: inventoryService}
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	cat, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Category created", cat)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.catalogService.ListCategories()
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Categories retrieved", list)
}

func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req service.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	m, err := h.catalogService.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 201, "Material created", m)
}

func (h *CatalogHandler) UpdateMaterial(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid material id")
		return
	}

	var req service.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	m, err := h.catalogService.UpdateMaterial(c.Request.Context(), id, req)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Material updated", m)
}

func (h *CatalogHandler) GetMaterial(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid material id")
		return
	}

	m, err := h.catalogService.GetMaterial(c.Request.Context(), id, middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Material retrieved", m)
}

func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	list, err := h.catalogService.ListMaterials(c.Request.Context(), c.Query("category"), middleware.GetRole(c))
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Materials retrieved", list)
}

func (h *CatalogHandler) SetPrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid material id")
		return
	}

	var req struct {
		Tier  models.PriceTier `json:"tier" binding:"required"`
		Price decimal.Decimal  `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.catalogService.SetPrice(c.Request.Context(), id, req.Tier, req.Price); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Price updated", nil)
}

func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid material id")
		return
	}

	var req struct {
		StockQty *int `json:"stockQty" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	m, err := h.inventoryService.AdjustStock(c.Request.Context(), id, *req.StockQty)
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Stock adjusted", m)
}

func (h *CatalogHandler) ListAlerts(c *gin.Context) {
	list, err := h.inventoryService.ListOpenAlerts()
	if err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Alerts retrieved", list)
}

func (h *CatalogHandler) ResolveAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid alert id")
		return
	}

	if err := h.inventoryService.ResolveAlert(id); err != nil {
		utils.WriteError(c, err)
		return
	}

	utils.Success(c, 200, "Alert resolved", nil)
}
