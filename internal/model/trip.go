package model

import (
	"time"
)

// Currency 行程结算币种
type Currency struct {
	ID     int    `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(50);not null"`
	Code   string `json:"code" gorm:"type:varchar(10);not null;uniqueIndex"`
	Symbol string `json:"symbol,omitempty" gorm:"type:varchar(5)"`
}

func (Currency) TableName() string {
	return "currencies"
}

// Trip 行程记录
type Trip struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	VehicleID int       `json:"vehicle_id" gorm:"column:vehicle_id;not null;index"`
	TripDate  time.Time `json:"trip_date" gorm:"column:trip_date;type:date;not null;index"`
	OriginID  int       `json:"origin_id" gorm:"column:origin_id;not null"`
	DestID    int       `json:"dest_id" gorm:"column:dest_id;not null"`
	// 行驶距离（公里）
	DistanceKm float64 `json:"distance_km" gorm:"column:distance_km;not null"`
	// 运费
	FreightValue float64 `json:"freight_value" gorm:"column:freight_value;not null"`
	CurrencyID   int     `json:"currency_id" gorm:"column:currency_id;not null"`
	// 司机津贴百分比（0–100）
	PerDiemPct float64 `json:"per_diem_pct" gorm:"column:per_diem_pct;not null;default:0"`
	// 额外开销合计，由 TripExpense 汇总维护
	Expenses float64 `json:"expenses" gorm:"column:expenses;not null;default:0"`
	// 保存时自动计算
	TotalProfit float64   `json:"total_profit" gorm:"column:total_profit;not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:now()"`

	// 关联
	Vehicle  *Vehicle  `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Origin   *Location `json:"origin,omitempty" gorm:"foreignKey:OriginID"`
	Dest     *Location `json:"dest,omitempty" gorm:"foreignKey:DestID"`
	Currency *Currency `json:"currency,omitempty" gorm:"foreignKey:CurrencyID"`
}

func (Trip) TableName() string {
	return "trips"
}

// Profit 计算行程净收益：运费 − 津贴 − 开销，不为负
func (t *Trip) Profit() float64 {
	perDiem := t.FreightValue * t.PerDiemPct / 100
	profit := t.FreightValue - perDiem - t.Expenses
	if profit < 0 {
		return 0
	}
	return profit
}

// TripExpense 行程额外开销
type TripExpense struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	TripID      int       `json:"trip_id" gorm:"column:trip_id;not null;index"`
	Description string    `json:"description" gorm:"type:varchar(200)"`
	Amount      float64   `json:"amount" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:now()"`
}

func (TripExpense) TableName() string {
	return "trip_expenses"
}

// CreateTripRequest 创建行程请求
type CreateTripRequest struct {
	VehicleID    int     `json:"vehicle_id" binding:"required"`
	TripDate     string  `json:"trip_date" binding:"required"`
	OriginID     int     `json:"origin_id" binding:"required"`
	DestID       int     `json:"dest_id" binding:"required"`
	DistanceKm   float64 `json:"distance_km" binding:"required,gte=0"`
	FreightValue float64 `json:"freight_value" binding:"gte=0"`
	CurrencyID   int     `json:"currency_id" binding:"required"`
	PerDiemPct   float64 `json:"per_diem_pct" binding:"gte=0,lte=100"`
}

// UpdateTripRequest 更新行程请求
type UpdateTripRequest struct {
	VehicleID    int      `json:"vehicle_id"`
	TripDate     string   `json:"trip_date"`
	OriginID     int      `json:"origin_id"`
	DestID       int      `json:"dest_id"`
	DistanceKm   *float64 `json:"distance_km"`
	FreightValue *float64 `json:"freight_value"`
	CurrencyID   int      `json:"currency_id"`
	PerDiemPct   *float64 `json:"per_diem_pct"`
}

// AddTripExpenseRequest 新增行程开销请求
type AddTripExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount" binding:"required,gte=0"`
}

// TripListQuery 行程列表查询
type TripListQuery struct {
	VehicleID int    `form:"vehicle_id"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}
