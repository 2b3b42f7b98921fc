package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cargoease/api/internal/model"
	"cargoease/api/internal/service"
)

// AlertHandler 保养告警处理器
type AlertHandler struct {
	alerts *service.AlertService
}

// NewAlertHandler 创建告警处理器
func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// RegisterRoutes 注册路由
func (h *AlertHandler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.PUT("/:id/read", h.MarkRead)
	}
}

// ListAlerts 获取告警列表
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	var query model.AlertListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alerts, total, err := h.alerts.List(&query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list":      alerts,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	})
}

// MarkRead 标记告警已读
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.alerts.MarkRead(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert marked as read"})
}
