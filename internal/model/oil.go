package model

import (
	"time"
)

// OilSubsystem 油路子系统
type OilSubsystem string

const (
	OilEngine  OilSubsystem = "engine"
	OilGearbox OilSubsystem = "gearbox"
)

// Valid 子系统取值校验
func (s OilSubsystem) Valid() bool {
	return s == OilEngine || s == OilGearbox
}

// OilCycle 油周期，每辆车每个子系统一条
//
// AccumulatedKm 是周期内行程距离之和，由 OilService.Recompute 从行程
// 历史重算，不做增量维护。
type OilCycle struct {
	ID        int          `json:"id" gorm:"primaryKey"`
	VehicleID int          `json:"vehicle_id" gorm:"column:vehicle_id;not null;uniqueIndex:uq_oil_vehicle_subsystem"`
	Subsystem OilSubsystem `json:"subsystem" gorm:"type:varchar(20);not null;uniqueIndex:uq_oil_vehicle_subsystem"`
	// 当前周期累计公里
	AccumulatedKm float64 `json:"accumulated_km" gorm:"column:accumulated_km;not null;default:0"`
	// 周期寿命（公里），发动机 30000 / 变速箱 100000
	LifeLimitKm int `json:"life_limit_km" gorm:"column:life_limit_km;not null"`
	// 已完成换油次数
	CycleCount int `json:"cycle_count" gorm:"column:cycle_count;not null;default:0"`
	// 当前周期起点
	InstalledAt time.Time `json:"installed_at" gorm:"column:installed_at;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:now()"`
}

func (OilCycle) TableName() string {
	return "oil_cycles"
}

// PercentUsed 当前周期寿命占比，封顶 100
func (c *OilCycle) PercentUsed() float64 {
	if c.LifeLimitKm <= 0 {
		return 0
	}
	pct := c.AccumulatedKm / float64(c.LifeLimitKm) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// OilChangeRecord 换油历史，只增不改
type OilChangeRecord struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	CycleID   int       `json:"cycle_id" gorm:"column:cycle_id;not null;index"`
	ChangedAt time.Time `json:"changed_at" gorm:"column:changed_at;not null"`
	// 换油时的累计公里快照
	AccumulatedKmAtChange float64 `json:"accumulated_km_at_change" gorm:"column:accumulated_km_at_change;not null"`
	// 是否同时换了滤芯，仅发动机有效
	FiltersChanged bool   `json:"filters_changed" gorm:"column:filters_changed;not null;default:false"`
	Notes          string `json:"notes,omitempty" gorm:"type:text"`

	// 关联
	Cycle *OilCycle `json:"cycle,omitempty" gorm:"foreignKey:CycleID"`
}

func (OilChangeRecord) TableName() string {
	return "oil_change_records"
}

// RegisterOilChangeRequest 登记换油请求
type RegisterOilChangeRequest struct {
	Subsystem      OilSubsystem `json:"subsystem" binding:"required"`
	FiltersChanged bool         `json:"filters_changed"`
	Notes          string       `json:"notes"`
}
