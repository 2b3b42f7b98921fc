package model

import (
	"time"
)

// Vehicle 车辆信息
type Vehicle struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Brand        string    `json:"brand" gorm:"type:varchar(60);not null"`
	Model        string    `json:"model" gorm:"type:varchar(60);not null"`
	YearBuilt    int       `json:"year_built" gorm:"column:year_built"`
	PlateNumber  string    `json:"plate_number" gorm:"column:plate_number;type:varchar(10);not null;uniqueIndex"`
	TrailerPlate *string   `json:"trailer_plate,omitempty" gorm:"column:trailer_plate;type:varchar(10);uniqueIndex"`
	AxleCount    int       `json:"axle_count" gorm:"column:axle_count;not null;default:2"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	Remark       string    `json:"remark,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;default:now()"`

	// 关联
	Tires []Tire `json:"tires,omitempty" gorm:"foreignKey:VehicleID"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// CreateVehicleRequest 创建车辆请求
type CreateVehicleRequest struct {
	Brand        string  `json:"brand" binding:"required"`
	Model        string  `json:"model" binding:"required"`
	YearBuilt    int     `json:"year_built" binding:"required,gte=1950"`
	PlateNumber  string  `json:"plate_number" binding:"required"`
	TrailerPlate *string `json:"trailer_plate"`
	AxleCount    int     `json:"axle_count" binding:"required,gte=1,lte=10"`
	Remark       string  `json:"remark"`
}

// UpdateVehicleRequest 更新车辆请求
//
// AxleCount is deliberately absent: once tires are assigned the axle layout
// is fixed and changing it is unsupported.
type UpdateVehicleRequest struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	YearBuilt    int     `json:"year_built"`
	PlateNumber  string  `json:"plate_number"`
	TrailerPlate *string `json:"trailer_plate"`
	Status       string  `json:"status"`
	Remark       string  `json:"remark"`
}

// VehicleListQuery 车辆列表查询
type VehicleListQuery struct {
	PlateNumber string `form:"plate_number"`
	Brand       string `form:"brand"`
	Status      string `form:"status"`
	Page        int    `form:"page,default=1"`
	PageSize    int    `form:"page_size,default=20"`
}

// MaintenanceSummary 车辆保养面板数据
type MaintenanceSummary struct {
	VehicleID   int          `json:"vehicle_id"`
	Engine      OilCycleView `json:"engine"`
	Gearbox     OilCycleView `json:"gearbox"`
	Tires       []TireView   `json:"tires"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// OilCycleView 油周期展示数据
type OilCycleView struct {
	CycleID       int     `json:"cycle_id"`
	Subsystem     string  `json:"subsystem"`
	AccumulatedKm float64 `json:"accumulated_km"`
	LifeLimitKm   int     `json:"life_limit_km"`
	CycleCount    int     `json:"cycle_count"`
	// 占寿命百分比，封顶 100
	PercentUsed float64 `json:"percent_used"`
}

// TireView 轮胎展示数据
type TireView struct {
	TireID         int    `json:"tire_id"`
	PositionNumber int    `json:"position_number"`
	Axle           int    `json:"axle"`
	Slot           int    `json:"slot"`
	Condition      string `json:"condition"`
	WearKm         int    `json:"wear_km"`
	// 该轮胎状态对应的磨损上限（进度条用）
	CapKm int `json:"cap_km"`
}
