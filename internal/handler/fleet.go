package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cargoease/api/internal/model"
)

// FleetHandler 司机/客户/地点/币种登记处理器
type FleetHandler struct {
	db *gorm.DB
}

// NewFleetHandler 创建登记处理器
func NewFleetHandler(db *gorm.DB) *FleetHandler {
	return &FleetHandler{db: db}
}

// RegisterRoutes 注册路由
func (h *FleetHandler) RegisterRoutes(r *gin.RouterGroup) {
	drivers := r.Group("/drivers")
	{
		drivers.GET("", h.ListDrivers)
		drivers.POST("", h.CreateDriver)
		drivers.DELETE("/:id", h.DeactivateDriver)
	}

	clients := r.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}

	r.GET("/locations", h.ListLocations)
	r.GET("/currencies", h.ListCurrencies)
}

// ListDrivers 获取在册司机列表
func (h *FleetHandler) ListDrivers(c *gin.Context) {
	var drivers []model.Driver
	if err := h.db.Where("is_active = ?", true).Order("id").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": drivers})
}

// CreateDriver 登记司机
func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var req model.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 证件号、车牌都要在活跃司机间唯一
	var count int64
	h.db.Model(&model.Driver{}).Where("document_id = ? AND is_active = ?", req.DocumentID, true).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document id already registered for an active driver"})
		return
	}
	h.db.Model(&model.Driver{}).Where("plate_number = ? AND is_active = ?", req.PlateNumber, true).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plate number already assigned to an active driver"})
		return
	}

	driver := model.Driver{
		FullName:    req.FullName,
		DocumentID:  req.DocumentID,
		VehicleID:   req.VehicleID,
		PlateNumber: req.PlateNumber,
		IsActive:    true,
	}
	if err := h.db.Create(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, driver)
}

// DeactivateDriver 司机逻辑删除
func (h *FleetHandler) DeactivateDriver(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}

	res := h.db.Model(&model.Driver{}).Where("id = ? AND is_active = ?", id, true).Update("is_active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver deactivated"})
}

// ListClients 获取客户列表
func (h *FleetHandler) ListClients(c *gin.Context) {
	var clients []model.Client
	if err := h.db.Order("id").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": clients})
}

// CreateClient 登记客户
func (h *FleetHandler) CreateClient(c *gin.Context) {
	var req model.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := model.Client{
		Name:   req.Name,
		TaxID:  req.TaxID,
		Phone:  req.Phone,
		Email:  req.Email,
		Remark: req.Remark,
	}
	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, client)
}

// DeleteClient 删除客户
func (h *FleetHandler) DeleteClient(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	res := h.db.Delete(&model.Client{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}

// ListLocations 获取地点列表（行程出发/目的地）
func (h *FleetHandler) ListLocations(c *gin.Context) {
	var locations []model.Location
	db := h.db.Order("name")
	if name := c.Query("name"); name != "" {
		db = db.Where("name ILIKE ?", "%"+name+"%")
	}
	if err := db.Limit(50).Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": locations})
}

// ListCurrencies 获取币种列表
func (h *FleetHandler) ListCurrencies(c *gin.Context) {
	var currencies []model.Currency
	if err := h.db.Order("code").Find(&currencies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": currencies})
}
