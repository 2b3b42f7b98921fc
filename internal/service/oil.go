// 机油/变速箱油保养服务

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cargoease/api/internal/config"
	"cargoease/api/internal/model"
)

// OilCyclePair Recompute 的返回值，两个子系统的当前周期
type OilCyclePair struct {
	Engine  model.OilCycle `json:"engine"`
	Gearbox model.OilCycle `json:"gearbox"`
}

// OilService 油周期服务
//
// 累计公里始终从行程历史整体重算（不做增量），重算是幂等的：
// 同一行程集合下连续调用 Recompute 结果不变。
type OilService struct {
	db     *gorm.DB
	cfg    config.MaintenanceConfig
	alerts AlertPublisher
}

// NewOilService 创建油周期服务
func NewOilService(db *gorm.DB, cfg config.MaintenanceConfig) *OilService {
	return &OilService{db: db, cfg: cfg}
}

// SetAlertPublisher 挂接告警发布器
func (s *OilService) SetAlertPublisher(p AlertPublisher) {
	s.alerts = p
}

// Recompute 重算某辆车两个子系统的累计公里并持久化（仅在值变化时写库）
func (s *OilService) Recompute(ctx context.Context, vehicleID int) (*OilCyclePair, error) {
	var pair OilCyclePair

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVehicleExists(tx, vehicleID); err != nil {
			return err
		}

		engine, err := s.recomputeCycle(tx, vehicleID, model.OilEngine)
		if err != nil {
			return err
		}
		gearbox, err := s.recomputeCycle(tx, vehicleID, model.OilGearbox)
		if err != nil {
			return err
		}
		pair.Engine = *engine
		pair.Gearbox = *gearbox
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyIfOverLife(&pair.Engine)
	s.notifyIfOverLife(&pair.Gearbox)
	return &pair, nil
}

// RegisterChange 登记换油：存历史快照、周期数+1、累计公里清零、周期起点重置。
// 整个操作在一个事务里完成。
func (s *OilService) RegisterChange(ctx context.Context, vehicleID int, req *model.RegisterOilChangeRequest) (*model.OilChangeRecord, error) {
	if !req.Subsystem.Valid() {
		return nil, ValidationError("unknown oil subsystem %q", req.Subsystem)
	}

	// 滤芯只在发动机换油时有意义
	filters := req.FiltersChanged
	if req.Subsystem != model.OilEngine {
		filters = false
	}

	var record model.OilChangeRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkVehicleExists(tx, vehicleID); err != nil {
			return err
		}

		// 车辆还没被跟踪过也不能报“未找到”，先重算把周期建出来
		cycle, err := s.recomputeCycle(tx, vehicleID, req.Subsystem)
		if err != nil {
			return err
		}

		now := time.Now()
		record = model.OilChangeRecord{
			CycleID:               cycle.ID,
			ChangedAt:             now,
			AccumulatedKmAtChange: cycle.AccumulatedKm,
			FiltersChanged:        filters,
			Notes:                 req.Notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create oil change record: %w", err)
		}

		updates := map[string]interface{}{
			"cycle_count":    gorm.Expr("cycle_count + 1"),
			"accumulated_km": 0,
			"installed_at":   now,
		}
		if err := tx.Model(&model.OilCycle{}).Where("id = ?", cycle.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("reset oil cycle: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetChangeHistory 获取某辆车某子系统的换油历史
func (s *OilService) GetChangeHistory(ctx context.Context, vehicleID int, subsystem model.OilSubsystem) ([]model.OilChangeRecord, error) {
	if !subsystem.Valid() {
		return nil, ValidationError("unknown oil subsystem %q", subsystem)
	}

	var records []model.OilChangeRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN oil_cycles ON oil_cycles.id = oil_change_records.cycle_id").
		Where("oil_cycles.vehicle_id = ? AND oil_cycles.subsystem = ?", vehicleID, subsystem).
		Order("oil_change_records.changed_at DESC").
		Find(&records).Error
	return records, err
}

// recomputeCycle 确保周期存在并重算其累计公里，仅在值变化时写库
func (s *OilService) recomputeCycle(tx *gorm.DB, vehicleID int, subsystem model.OilSubsystem) (*model.OilCycle, error) {
	cycle, err := s.ensureCycle(tx, vehicleID, subsystem)
	if err != nil {
		return nil, err
	}

	km, err := s.sumTripKmSince(tx, vehicleID, cycle.InstalledAt)
	if err != nil {
		return nil, err
	}

	if cycle.AccumulatedKm != km {
		if err := tx.Model(cycle).Update("accumulated_km", km).Error; err != nil {
			return nil, fmt.Errorf("persist accumulated km: %w", err)
		}
		cycle.AccumulatedKm = km
	}
	return cycle, nil
}

// CreateCycles 车辆登记时建出两个子系统的周期，起点为登记时刻
func (s *OilService) CreateCycles(tx *gorm.DB, vehicle *model.Vehicle) error {
	for _, subsystem := range []model.OilSubsystem{model.OilEngine, model.OilGearbox} {
		cycle := model.OilCycle{
			VehicleID:   vehicle.ID,
			Subsystem:   subsystem,
			LifeLimitKm: s.lifeLimitFor(subsystem),
			InstalledAt: vehicle.CreatedAt,
		}
		if err := tx.Create(&cycle).Error; err != nil {
			return fmt.Errorf("create %s oil cycle: %w", subsystem, err)
		}
	}
	return nil
}

// ensureCycle 取 (vehicle, subsystem) 周期；登记前的老车没有周期，
// 懒创建时起点锚在最早行程前一天，让既有行程（含补录的）全部计入，
// 没有行程才退回车辆登记时刻
func (s *OilService) ensureCycle(tx *gorm.DB, vehicleID int, subsystem model.OilSubsystem) (*model.OilCycle, error) {
	var cycle model.OilCycle
	err := tx.Where("vehicle_id = ? AND subsystem = ?", vehicleID, subsystem).First(&cycle).Error
	if err == nil {
		return &cycle, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var vehicle model.Vehicle
	if err := tx.Select("created_at").First(&vehicle, vehicleID).Error; err != nil {
		return nil, err
	}
	installedAt := vehicle.CreatedAt

	var firstTrip sql.NullTime
	if err := tx.Model(&model.Trip{}).Where("vehicle_id = ?", vehicleID).
		Select("MIN(trip_date)").Scan(&firstTrip).Error; err != nil {
		return nil, err
	}
	if firstTrip.Valid {
		installedAt = firstTrip.Time.AddDate(0, 0, -1)
	}

	cycle = model.OilCycle{
		VehicleID:   vehicleID,
		Subsystem:   subsystem,
		LifeLimitKm: s.lifeLimitFor(subsystem),
		InstalledAt: installedAt,
	}
	if err := tx.Create(&cycle).Error; err != nil {
		return nil, fmt.Errorf("create oil cycle: %w", err)
	}
	return &cycle, nil
}

// sumTripKmSince 统计周期起点之后的行程公里。
// 日期晚于起点当天的行程全算；起点当天的行程只算录入时刻不早于起点的，
// 这样换油前录的当日行程不会被重复计入新周期。
func (s *OilService) sumTripKmSince(tx *gorm.DB, vehicleID int, installedAt time.Time) (float64, error) {
	day := time.Date(installedAt.Year(), installedAt.Month(), installedAt.Day(), 0, 0, 0, 0, installedAt.Location())

	var total float64
	err := tx.Model(&model.Trip{}).
		Where("vehicle_id = ?", vehicleID).
		Where("trip_date > ? OR (trip_date = ? AND created_at >= ?)", day, day, installedAt).
		Select("COALESCE(SUM(distance_km), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum trip km: %w", err)
	}
	return total, nil
}

func (s *OilService) lifeLimitFor(subsystem model.OilSubsystem) int {
	if subsystem == model.OilGearbox {
		return s.cfg.GearboxOilLifeKm
	}
	return s.cfg.EngineOilLifeKm
}

// notifyIfOverLife 超过周期寿命时发保养告警
func (s *OilService) notifyIfOverLife(cycle *model.OilCycle) {
	if s.alerts == nil || cycle.LifeLimitKm <= 0 {
		return
	}
	if cycle.AccumulatedKm < float64(cycle.LifeLimitKm) {
		return
	}
	s.alerts.Publish(model.AlertMessage{
		Type:      model.AlertOilOverLife,
		VehicleID: cycle.VehicleID,
		SubjectID: cycle.ID,
		Title:     fmt.Sprintf("%s oil over life limit", cycle.Subsystem),
		Content:   fmt.Sprintf("vehicle %d %s oil cycle at %.0f km of %d km", cycle.VehicleID, cycle.Subsystem, cycle.AccumulatedKm, cycle.LifeLimitKm),
	})
}

// checkVehicleExists 车辆存在性检查
func checkVehicleExists(tx *gorm.DB, vehicleID int) error {
	var count int64
	if err := tx.Model(&model.Vehicle{}).Where("id = ?", vehicleID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NotFoundError("vehicle %d", vehicleID)
	}
	return nil
}
