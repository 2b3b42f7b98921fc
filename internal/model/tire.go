package model

import (
	"time"
)

// TireCondition 轮胎状态
type TireCondition string

const (
	TireNew      TireCondition = "new"
	TireRecapped TireCondition = "recapped"
	TireUsed     TireCondition = "used"
)

// Valid 状态取值校验
func (c TireCondition) Valid() bool {
	return c == TireNew || c == TireRecapped || c == TireUsed
}

// TireLifecycle 轮胎生命周期状态（软删除）
type TireLifecycle string

const (
	TireActive  TireLifecycle = "active"
	TireRemoved TireLifecycle = "removed"
)

// WearCapKm 各状态磨损上限（进度条用）
var WearCapKm = map[TireCondition]int{
	TireNew:      100000,
	TireRecapped: 80000,
	TireUsed:     50000,
}

// Tire 轮胎
//
// VehicleID 为空 ⇔ 在库房；PositionNumber 在库房时为 0，装车后为
// 1..ejes×每轴位数，已装车轮胎按 (vehicle_id, position_number) 唯一。
type Tire struct {
	ID int `json:"id" gorm:"primaryKey"`
	// 所属车辆，在库房时为空
	VehicleID *int `json:"vehicle_id,omitempty" gorm:"column:vehicle_id;index"`
	// 车上的位置编号，库房里为 0
	PositionNumber int           `json:"position_number" gorm:"column:position_number;not null;default:0"`
	Mounted        bool          `json:"mounted" gorm:"not null;default:false"`
	Condition      TireCondition `json:"condition" gorm:"type:varchar(20);not null;default:'new'"`
	// 自上次归零（新装/翻新）以来累计磨损公里
	WearKm int `json:"wear_km" gorm:"column:wear_km;not null;default:0"`
	// 生命周期：active / removed
	Lifecycle TireLifecycle `json:"lifecycle" gorm:"type:varchar(20);not null;default:'active'"`
	RemovedAt *time.Time    `json:"removed_at,omitempty" gorm:"column:removed_at"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"not null;default:now()"`
}

func (Tire) TableName() string {
	return "tires"
}

// InDepot 是否在库房
func (t *Tire) InDepot() bool {
	return t.VehicleID == nil && !t.Mounted
}

// TireDepotEntry 库房登记，每条对应一个在库轮胎
type TireDepotEntry struct {
	TireID    int       `json:"tire_id" gorm:"column:tire_id;primaryKey"`
	EnteredAt time.Time `json:"entered_at" gorm:"column:entered_at;not null;default:now()"`
}

func (TireDepotEntry) TableName() string {
	return "tire_depot_entries"
}

// SendTiresToDepotRequest 轮胎入库请求
type SendTiresToDepotRequest struct {
	TireIDs   []int          `json:"tire_ids" binding:"required,min=1"`
	Condition *TireCondition `json:"condition"`
}

// MountTiresRequest 轮胎装车请求
type MountTiresRequest struct {
	TireIDs    []int          `json:"tire_ids" binding:"required,min=1"`
	VehicleID  int            `json:"vehicle_id" binding:"required"`
	Axle       *int           `json:"axle"`
	Slot       *int           `json:"slot"`
	AutoAssign bool           `json:"auto_assign"`
	Condition  *TireCondition `json:"condition"`
}

// SwapTiresRequest 轮胎换位请求
type SwapTiresRequest struct {
	TireA int `json:"tire_a" binding:"required"`
	TireB int `json:"tire_b" binding:"required"`
}

// RecapTiresRequest 轮胎翻新请求
type RecapTiresRequest struct {
	TireIDs []int `json:"tire_ids" binding:"required,min=1"`
}

// CreateDepotTireRequest 在库房新建轮胎请求
type CreateDepotTireRequest struct {
	Condition TireCondition `json:"condition"`
}

// DeleteDepotTiresRequest 删除库房轮胎请求
type DeleteDepotTiresRequest struct {
	TireIDs []int `json:"tire_ids" binding:"required,min=1"`
}
