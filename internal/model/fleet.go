package model

import (
	"time"
)

// Driver 司机，逻辑删除（is_active）
type Driver struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	FullName string `json:"full_name" gorm:"column:full_name;type:varchar(100);not null"`
	// 证件号，活跃记录间唯一
	DocumentID string `json:"document_id" gorm:"column:document_id;type:varchar(10);not null;index"`
	VehicleID  int    `json:"vehicle_id" gorm:"column:vehicle_id;not null"`
	// 所驾车辆车牌
	PlateNumber string    `json:"plate_number" gorm:"column:plate_number;type:varchar(10);not null"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;not null;default:true;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:now()"`

	// 关联
	Vehicle *Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

func (Driver) TableName() string {
	return "drivers"
}

// Client 客户
type Client struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	TaxID     string    `json:"tax_id,omitempty" gorm:"column:tax_id;type:varchar(20)"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Email     string    `json:"email,omitempty" gorm:"type:varchar(100)"`
	Remark    string    `json:"remark,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (Client) TableName() string {
	return "clients"
}

// Location 行程出发/目的地
type Location struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"type:varchar(100);not null"`
	Province string `json:"province,omitempty" gorm:"type:varchar(100)"`
	Country  string `json:"country,omitempty" gorm:"type:varchar(60)"`
}

func (Location) TableName() string {
	return "locations"
}

// CreateDriverRequest 创建司机请求
type CreateDriverRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	DocumentID  string `json:"document_id" binding:"required"`
	VehicleID   int    `json:"vehicle_id" binding:"required"`
	PlateNumber string `json:"plate_number" binding:"required"`
}

// CreateClientRequest 创建客户请求
type CreateClientRequest struct {
	Name   string `json:"name" binding:"required"`
	TaxID  string `json:"tax_id"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Remark string `json:"remark"`
}
