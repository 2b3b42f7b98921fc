package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cargoease/api/internal/model"
	"cargoease/api/internal/service"
)

// OilHandler 油保养处理器
type OilHandler struct {
	oil *service.OilService
}

// NewOilHandler 创建油保养处理器
func NewOilHandler(oil *service.OilService) *OilHandler {
	return &OilHandler{oil: oil}
}

// RegisterRoutes 注册路由
func (h *OilHandler) RegisterRoutes(r *gin.RouterGroup) {
	oil := r.Group("/vehicles/:id/oil")
	{
		oil.GET("", h.GetCycles)
		oil.POST("/changes", h.RegisterChange)
		oil.GET("/history", h.GetHistory)
	}
}

// GetCycles 获取（并重算）两个子系统的当前周期
func (h *OilHandler) GetCycles(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	pair, err := h.oil.Recompute(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// RegisterChange 登记换油
func (h *OilHandler) RegisterChange(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	var req model.RegisterOilChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.oil.RegisterChange(c.Request.Context(), vehicleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetHistory 获取换油历史
func (h *OilHandler) GetHistory(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	subsystem := model.OilSubsystem(c.DefaultQuery("subsystem", string(model.OilEngine)))
	records, err := h.oil.GetChangeHistory(c.Request.Context(), vehicleID, subsystem)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": records})
}
