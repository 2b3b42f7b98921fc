// 车辆登记与保养面板

package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"cargoease/api/internal/config"
	"cargoease/api/internal/model"
)

// VehicleService 车辆服务
type VehicleService struct {
	db    *gorm.DB
	cfg   config.MaintenanceConfig
	oil   *OilService
	tires *TireService
	cache *SummaryCache
}

// NewVehicleService 创建车辆服务
func NewVehicleService(db *gorm.DB, cfg config.MaintenanceConfig, oil *OilService, tires *TireService, cache *SummaryCache) *VehicleService {
	return &VehicleService{db: db, cfg: cfg, oil: oil, tires: tires, cache: cache}
}

// Create 登记车辆并按 车轴数×每轴位数 生成整套已装车的新轮胎
func (s *VehicleService) Create(ctx context.Context, req *model.CreateVehicleRequest) (*model.Vehicle, error) {
	vehicle := model.Vehicle{
		Brand:        req.Brand,
		Model:        req.Model,
		YearBuilt:    req.YearBuilt,
		PlateNumber:  req.PlateNumber,
		TrailerPlate: req.TrailerPlate,
		AxleCount:    req.AxleCount,
		Status:       "active",
		Remark:       req.Remark,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&model.Vehicle{}).Where("plate_number = ?", req.PlateNumber).Count(&count)
		if count > 0 {
			return ConflictError("plate number %s already registered", req.PlateNumber)
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return err
		}
		if err := s.oil.CreateCycles(tx, &vehicle); err != nil {
			return err
		}
		return s.tires.CreateDefaultSet(tx, &vehicle)
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Get 车辆详情
func (s *VehicleService) Get(ctx context.Context, vehicleID int) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := s.db.WithContext(ctx).First(&vehicle, vehicleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("vehicle %d", vehicleID)
		}
		return nil, err
	}
	return &vehicle, nil
}

// List 车辆列表
func (s *VehicleService) List(ctx context.Context, query *model.VehicleListQuery) ([]model.Vehicle, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Vehicle{})

	if query.PlateNumber != "" {
		db = db.Where("plate_number LIKE ?", "%"+query.PlateNumber+"%")
	}
	if query.Brand != "" {
		db = db.Where("brand = ?", query.Brand)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	db.Count(&total)

	var vehicles []model.Vehicle
	offset := (query.Page - 1) * query.PageSize
	err := db.Order("id").Offset(offset).Limit(query.PageSize).Find(&vehicles).Error
	return vehicles, total, err
}

// Update 更新车辆。车轴数不可改：轮胎位布局在登记时就固定了。
func (s *VehicleService) Update(ctx context.Context, vehicleID int, req *model.UpdateVehicleRequest) (*model.Vehicle, error) {
	vehicle, err := s.Get(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Brand != "" {
		updates["brand"] = req.Brand
	}
	if req.Model != "" {
		updates["model"] = req.Model
	}
	if req.YearBuilt > 0 {
		updates["year_built"] = req.YearBuilt
	}
	if req.PlateNumber != "" {
		updates["plate_number"] = req.PlateNumber
	}
	if req.TrailerPlate != nil {
		updates["trailer_plate"] = req.TrailerPlate
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Remark != "" {
		updates["remark"] = req.Remark
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(vehicle).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return vehicle, nil
}

// MaintenanceSummary 保养面板数据：两个油周期 + 已装车轮胎磨损。
// 先读 Redis 缓存，未命中时重建并回写。
func (s *VehicleService) MaintenanceSummary(ctx context.Context, vehicleID int) (*model.MaintenanceSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, vehicleID); err == nil && cached != nil {
			return cached, nil
		}
	}

	pair, err := s.oil.Recompute(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	tires, err := s.tires.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	summary := &model.MaintenanceSummary{
		VehicleID:   vehicleID,
		Engine:      oilCycleView(&pair.Engine),
		Gearbox:     oilCycleView(&pair.Gearbox),
		Tires:       make([]model.TireView, 0, len(tires)),
		GeneratedAt: time.Now(),
	}
	for _, t := range tires {
		axle, slot := FromPositionNumber(t.PositionNumber, s.cfg.PositionsPerAxle)
		summary.Tires = append(summary.Tires, model.TireView{
			TireID:         t.ID,
			PositionNumber: t.PositionNumber,
			Axle:           axle,
			Slot:           slot,
			Condition:      string(t.Condition),
			WearKm:         t.WearKm,
			CapKm:          model.WearCapKm[t.Condition],
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			// 缓存写失败不影响面板返回
			return summary, nil
		}
	}
	return summary, nil
}

func oilCycleView(cycle *model.OilCycle) model.OilCycleView {
	return model.OilCycleView{
		CycleID:       cycle.ID,
		Subsystem:     string(cycle.Subsystem),
		AccumulatedKm: cycle.AccumulatedKm,
		LifeLimitKm:   cycle.LifeLimitKm,
		CycleCount:    cycle.CycleCount,
		PercentUsed:   cycle.PercentUsed(),
	}
}
