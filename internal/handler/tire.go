package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cargoease/api/internal/model"
	"cargoease/api/internal/service"
)

// TireHandler 轮胎处理器
type TireHandler struct {
	tires *service.TireService
}

// NewTireHandler 创建轮胎处理器
func NewTireHandler(tires *service.TireService) *TireHandler {
	return &TireHandler{tires: tires}
}

// RegisterRoutes 注册路由
func (h *TireHandler) RegisterRoutes(r *gin.RouterGroup) {
	tires := r.Group("/tires")
	{
		tires.POST("/depot", h.SendToDepot)
		tires.POST("/mount", h.Mount)
		tires.POST("/swap", h.Swap)
		tires.POST("/recap", h.Recap)
		tires.POST("/remove", h.Remove)

		// 库房
		tires.GET("/depot", h.ListDepot)
		tires.POST("/depot/new", h.CreateInDepot)
		tires.DELETE("/depot", h.DeleteFromDepot)
	}
	r.GET("/vehicles/:id/tires", h.ListByVehicle)
}

// ListByVehicle 某辆车已装车的轮胎
func (h *TireHandler) ListByVehicle(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	tires, err := h.tires.ListByVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": tires})
}

// ListDepot 库房轮胎列表
func (h *TireHandler) ListDepot(c *gin.Context) {
	tires, err := h.tires.ListDepot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": tires})
}

// SendToDepot 轮胎入库
func (h *TireHandler) SendToDepot(c *gin.Context) {
	var req model.SendTiresToDepotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moved, err := h.tires.SendToDepot(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}

// Mount 轮胎装车
func (h *TireHandler) Mount(c *gin.Context) {
	var req model.MountTiresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moved, err := h.tires.Mount(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}

// Swap 轮胎换位
func (h *TireHandler) Swap(c *gin.Context) {
	var req model.SwapTiresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.tires.Swap(c.Request.Context(), req.TireA, req.TireB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Recap 轮胎翻新
func (h *TireHandler) Recap(c *gin.Context) {
	var req model.RecapTiresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.tires.Recap(c.Request.Context(), req.TireIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Remove 轮胎软删除
func (h *TireHandler) Remove(c *gin.Context) {
	var req model.DeleteDepotTiresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.tires.Remove(c.Request.Context(), req.TireIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// CreateInDepot 在库房新建轮胎
func (h *TireHandler) CreateInDepot(c *gin.Context) {
	var req model.CreateDepotTireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tire, err := h.tires.CreateInDepot(c.Request.Context(), req.Condition)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tire)
}

// DeleteFromDepot 物理删除库房轮胎
func (h *TireHandler) DeleteFromDepot(c *gin.Context) {
	var req model.DeleteDepotTiresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.tires.DeleteFromDepot(c.Request.Context(), req.TireIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
