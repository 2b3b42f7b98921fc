package model

import (
	"time"
)

// AlertType 保养告警类型
type AlertType string

const (
	AlertOilOverLife    AlertType = "OIL_OVER_LIFE"
	AlertTireWornToUsed AlertType = "TIRE_WORN_TO_USED"
)

// MaintenanceAlert 保养告警记录
type MaintenanceAlert struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Type      AlertType `json:"type" gorm:"type:varchar(30);not null;index"`
	VehicleID int       `json:"vehicle_id" gorm:"column:vehicle_id;not null;index"`
	// 触发对象：油周期 id 或轮胎 id
	SubjectID int       `json:"subject_id" gorm:"column:subject_id;not null"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null"`
	Content   string    `json:"content" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'unread'"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
}

func (MaintenanceAlert) TableName() string {
	return "maintenance_alerts"
}

// AlertMessage NATS 上的告警载荷
type AlertMessage struct {
	Type      AlertType `json:"type"`
	VehicleID int       `json:"vehicle_id"`
	SubjectID int       `json:"subject_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
}

// AlertListQuery 告警列表查询
type AlertListQuery struct {
	VehicleID int    `form:"vehicle_id"`
	Type      string `form:"type"`
	Status    string `form:"status"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}
