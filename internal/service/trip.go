// 行程服务：CRUD 即保养计数的触发边界

package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"cargoease/api/internal/model"
)

// TripService 行程服务。每次行程写操作提交后恰好触发一次重算，
// 对应车辆的油周期和轮胎磨损由 RecalcService 同步。
type TripService struct {
	db     *gorm.DB
	recalc *RecalcService
}

// NewTripService 创建行程服务
func NewTripService(db *gorm.DB, recalc *RecalcService) *TripService {
	return &TripService{db: db, recalc: recalc}
}

// Create 创建行程，提交后触发重算
func (s *TripService) Create(ctx context.Context, req *model.CreateTripRequest) (*model.Trip, error) {
	tripDate, err := parseTripDate(req.TripDate)
	if err != nil {
		return nil, err
	}

	trip := model.Trip{
		VehicleID:    req.VehicleID,
		TripDate:     tripDate,
		OriginID:     req.OriginID,
		DestID:       req.DestID,
		DistanceKm:   req.DistanceKm,
		FreightValue: req.FreightValue,
		CurrencyID:   req.CurrencyID,
		PerDiemPct:   req.PerDiemPct,
	}
	trip.TotalProfit = trip.Profit()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVehicleExists(tx, req.VehicleID); err != nil {
			return err
		}
		return tx.Create(&trip).Error
	})
	if err != nil {
		return nil, err
	}

	// 重算要读到已提交的行程，所以放在事务之外
	if err := s.recalc.OnTripCreated(ctx, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// Update 编辑行程，提交后按旧值计算增量触发重算
func (s *TripService) Update(ctx context.Context, tripID int, req *model.UpdateTripRequest) (*model.Trip, error) {
	var trip model.Trip
	var prevVehicleID int
	var prevDistance float64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&trip, tripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("trip %d", tripID)
			}
			return err
		}
		prevVehicleID = trip.VehicleID
		prevDistance = trip.DistanceKm

		if req.VehicleID > 0 && req.VehicleID != trip.VehicleID {
			if err := checkVehicleExists(tx, req.VehicleID); err != nil {
				return err
			}
			trip.VehicleID = req.VehicleID
		}
		if req.TripDate != "" {
			tripDate, err := parseTripDate(req.TripDate)
			if err != nil {
				return err
			}
			trip.TripDate = tripDate
		}
		if req.OriginID > 0 {
			trip.OriginID = req.OriginID
		}
		if req.DestID > 0 {
			trip.DestID = req.DestID
		}
		if req.DistanceKm != nil {
			if *req.DistanceKm < 0 {
				return ValidationError("distance must be non-negative")
			}
			trip.DistanceKm = *req.DistanceKm
		}
		if req.FreightValue != nil {
			trip.FreightValue = *req.FreightValue
		}
		if req.CurrencyID > 0 {
			trip.CurrencyID = req.CurrencyID
		}
		if req.PerDiemPct != nil {
			if *req.PerDiemPct < 0 || *req.PerDiemPct > 100 {
				return ValidationError("per diem percentage must be within [0, 100]")
			}
			trip.PerDiemPct = *req.PerDiemPct
		}

		trip.TotalProfit = trip.Profit()
		return tx.Save(&trip).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.recalc.OnTripUpdated(ctx, &trip, prevVehicleID, prevDistance); err != nil {
		return nil, err
	}
	return &trip, nil
}

// Delete 删除行程（连带开销），提交后把里程从保养计数里扣掉
func (s *TripService) Delete(ctx context.Context, tripID int) error {
	var trip model.Trip
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&trip, tripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("trip %d", tripID)
			}
			return err
		}
		if err := tx.Delete(&model.TripExpense{}, "trip_id = ?", tripID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Trip{}, tripID).Error
	})
	if err != nil {
		return err
	}

	return s.recalc.OnTripDeleted(ctx, &trip)
}

// Get 行程详情
func (s *TripService) Get(ctx context.Context, tripID int) (*model.Trip, error) {
	var trip model.Trip
	err := s.db.WithContext(ctx).
		Preload("Vehicle").Preload("Origin").Preload("Dest").Preload("Currency").
		First(&trip, tripID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("trip %d", tripID)
		}
		return nil, err
	}
	return &trip, nil
}

// List 行程列表
func (s *TripService) List(ctx context.Context, query *model.TripListQuery) ([]model.Trip, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Trip{})

	if query.VehicleID > 0 {
		db = db.Where("vehicle_id = ?", query.VehicleID)
	}
	if query.DateFrom != "" {
		db = db.Where("trip_date >= ?", query.DateFrom)
	}
	if query.DateTo != "" {
		db = db.Where("trip_date <= ?", query.DateTo)
	}

	var total int64
	db.Count(&total)

	var trips []model.Trip
	offset := (query.Page - 1) * query.PageSize
	err := db.Order("trip_date DESC, created_at DESC").
		Offset(offset).Limit(query.PageSize).
		Preload("Origin").Preload("Dest").Preload("Currency").
		Find(&trips).Error
	return trips, total, err
}

// AddExpense 新增行程开销并重汇总净收益。开销不改公里数，不触发重算。
func (s *TripService) AddExpense(ctx context.Context, tripID int, req *model.AddTripExpenseRequest) (*model.TripExpense, error) {
	var expense model.TripExpense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip model.Trip
		if err := tx.First(&trip, tripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("trip %d", tripID)
			}
			return err
		}

		expense = model.TripExpense{
			TripID:      tripID,
			Description: req.Description,
			Amount:      req.Amount,
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		return retotalExpenses(tx, &trip)
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense 删除行程开销并重汇总净收益
func (s *TripService) DeleteExpense(ctx context.Context, expenseID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expense model.TripExpense
		if err := tx.First(&expense, expenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("trip expense %d", expenseID)
			}
			return err
		}
		if err := tx.Delete(&model.TripExpense{}, expenseID).Error; err != nil {
			return err
		}

		var trip model.Trip
		if err := tx.First(&trip, expense.TripID).Error; err != nil {
			return err
		}
		return retotalExpenses(tx, &trip)
	})
}

// retotalExpenses 重汇总开销并更新净收益
func retotalExpenses(tx *gorm.DB, trip *model.Trip) error {
	var total float64
	if err := tx.Model(&model.TripExpense{}).
		Where("trip_id = ?", trip.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return err
	}

	trip.Expenses = total
	trip.TotalProfit = trip.Profit()
	return tx.Model(&model.Trip{}).Where("id = ?", trip.ID).Updates(map[string]interface{}{
		"expenses":     trip.Expenses,
		"total_profit": trip.TotalProfit,
	}).Error
}

func parseTripDate(value string) (time.Time, error) {
	tripDate, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ValidationError("invalid trip date %q: %s", value, err)
	}
	return tripDate, nil
}
