// 轮胎调度与磨损服务

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cargoease/api/internal/config"
	"cargoease/api/internal/model"
)

// TireService 轮胎服务
//
// 磨损公里走增量累加（带 0 下限），不从行程重算：轮胎会在车辆间
// 调度、翻新清零，磨损是物理量，重算模型表达不了。
type TireService struct {
	db     *gorm.DB
	cfg    config.MaintenanceConfig
	alerts AlertPublisher
}

// NewTireService 创建轮胎服务
func NewTireService(db *gorm.DB, cfg config.MaintenanceConfig) *TireService {
	return &TireService{db: db, cfg: cfg}
}

// SetAlertPublisher 挂接告警发布器
func (s *TireService) SetAlertPublisher(p AlertPublisher) {
	s.alerts = p
}

// CreateDefaultSet 给新注册车辆生成整套已装车轮胎（全新、磨损 0）
func (s *TireService) CreateDefaultSet(tx *gorm.DB, vehicle *model.Vehicle) error {
	capacity := vehicle.AxleCount * s.cfg.PositionsPerAxle
	for nro := 1; nro <= capacity; nro++ {
		var count int64
		if err := tx.Model(&model.Tire{}).
			Where("vehicle_id = ? AND position_number = ? AND mounted = ?", vehicle.ID, nro, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		tire := model.Tire{
			VehicleID:      &vehicle.ID,
			PositionNumber: nro,
			Mounted:        true,
			Condition:      model.TireNew,
			Lifecycle:      model.TireActive,
		}
		if err := tx.Create(&tire).Error; err != nil {
			return fmt.Errorf("create tire at position %d: %w", nro, err)
		}
	}
	return nil
}

// Accumulate 给车辆所有已装车轮胎加（或减）磨损公里。
// wear_km 不会低于 0；达到阈值的轮胎自动转为 USED。
// 返回受影响的轮胎数。
func (s *TireService) Accumulate(ctx context.Context, vehicleID int, deltaKm int) (int, error) {
	if deltaKm == 0 {
		return 0, nil
	}

	var affected int
	var worn []model.Tire

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住该车的已装车轮胎，避免并发行程编辑互相覆盖磨损
		var tires []model.Tire
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("vehicle_id = ? AND mounted = ? AND lifecycle = ?", vehicleID, true, model.TireActive).
			Find(&tires).Error; err != nil {
			return err
		}
		if len(tires) == 0 {
			return nil
		}

		// 原子的“加增量、下限 0”更新，不走读-改-写
		res := tx.Model(&model.Tire{}).
			Where("vehicle_id = ? AND mounted = ? AND lifecycle = ?", vehicleID, true, model.TireActive).
			Update("wear_km", gorm.Expr("GREATEST(0, wear_km + ?)", deltaKm))
		if res.Error != nil {
			return fmt.Errorf("accumulate wear: %w", res.Error)
		}
		affected = int(res.RowsAffected)

		// 跨过阈值的转 USED
		if err := tx.Where("vehicle_id = ? AND mounted = ? AND wear_km >= ? AND condition <> ?",
			vehicleID, true, s.cfg.TireUsedThresholdKm, model.TireUsed).
			Find(&worn).Error; err != nil {
			return err
		}
		if len(worn) > 0 {
			ids := tireIDs(worn)
			if err := tx.Model(&model.Tire{}).Where("id IN ?", ids).
				Update("condition", model.TireUsed).Error; err != nil {
				return fmt.Errorf("mark tires used: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range worn {
		s.notifyWorn(&worn[i], vehicleID)
	}
	return affected, nil
}

// SendToDepot 轮胎入库：清掉车辆和位置、落磨损状态、登记库房。
// 指定 condition=new 时磨损清零。返回移动的数量。
func (s *TireService) SendToDepot(ctx context.Context, req *model.SendTiresToDepotRequest) (int, error) {
	if req.Condition != nil && !req.Condition.Valid() {
		return 0, ValidationError("unknown tire condition %q", *req.Condition)
	}

	moved := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range req.TireIDs {
			tire, err := getActiveTire(tx, id)
			if err != nil {
				return err
			}
			updates := map[string]interface{}{
				"vehicle_id":      nil,
				"mounted":         false,
				"position_number": 0,
			}
			if req.Condition != nil {
				updates["condition"] = *req.Condition
				if *req.Condition == model.TireNew {
					updates["wear_km"] = 0
				}
			}
			if err := tx.Model(&model.Tire{}).Where("id = ?", tire.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("send tire %d to depot: %w", id, err)
			}
			if err := upsertDepotEntry(tx, tire.ID); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// Mount 轮胎装车。显式 (axle, slot) 或自动取第一个空位；目标位被占时
// 先把原轮胎下到库房再上新胎，保证 (vehicle, position) 唯一约束不被
// 瞬时打破。整批要么全部完成要么回滚。返回装上的数量。
func (s *TireService) Mount(ctx context.Context, req *model.MountTiresRequest) (int, error) {
	if req.Condition != nil && !req.Condition.Valid() {
		return 0, ValidationError("unknown tire condition %q", *req.Condition)
	}

	moved := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle model.Vehicle
		if err := tx.First(&vehicle, req.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("vehicle %d", req.VehicleID)
			}
			return err
		}

		// 目标位置：显式坐标整批共用，自动分配时每只胎各取一个空位
		explicitNro := 0
		if !req.AutoAssign {
			if req.Axle == nil || req.Slot == nil {
				return ValidationError("axle and slot are required unless auto_assign is set")
			}
			if *req.Axle < 1 || *req.Axle > vehicle.AxleCount {
				return ValidationError("axle %d out of range [1, %d]", *req.Axle, vehicle.AxleCount)
			}
			if *req.Slot < 1 || *req.Slot > s.cfg.PositionsPerAxle {
				return ValidationError("slot %d out of range [1, %d]", *req.Slot, s.cfg.PositionsPerAxle)
			}
			explicitNro = ToPositionNumber(*req.Axle, *req.Slot, s.cfg.PositionsPerAxle)
		}

		for _, id := range req.TireIDs {
			tire, err := getActiveTire(tx, id)
			if err != nil {
				return err
			}

			nro := explicitNro
			if req.AutoAssign {
				nro, err = s.firstFreePosition(tx, &vehicle)
				if err != nil {
					return err
				}
			} else {
				// 占位者先下车，锁住争用位避免两只胎同时占一个位
				var occupant model.Tire
				err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("vehicle_id = ? AND position_number = ? AND mounted = ?", vehicle.ID, nro, true).
					First(&occupant).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if err == nil && occupant.ID != tire.ID {
					if err := dismountToDepot(tx, occupant.ID); err != nil {
						return fmt.Errorf("evict tire %d from position %d: %w", occupant.ID, nro, err)
					}
				}
			}

			updates := map[string]interface{}{
				"vehicle_id":      vehicle.ID,
				"mounted":         true,
				"position_number": nro,
			}
			if req.Condition != nil {
				updates["condition"] = *req.Condition
				if *req.Condition == model.TireNew {
					updates["wear_km"] = 0
				}
			} else if tire.Condition == model.TireNew {
				// 没选状态但本来就是新胎：装车即从 0 起算
				updates["wear_km"] = 0
			}
			if err := tx.Model(&model.Tire{}).Where("id = ?", tire.ID).Updates(updates).Error; err != nil {
				if isUniqueViolation(err) {
					return ConflictError("position %d on vehicle %d is already occupied", nro, vehicle.ID)
				}
				return fmt.Errorf("mount tire %d: %w", id, err)
			}
			if err := tx.Delete(&model.TireDepotEntry{}, "tire_id = ?", tire.ID).Error; err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// Swap 交换两只轮胎的位置。
//   - 都在车上：三步交换（先空出 A 的位，B 进 A 位，A 进 B 原位），
//     两步直换会撞 (vehicle, position) 唯一约束。
//   - 一上一下：库房胎顶上车位，原车胎下库房；新胎是全新则磨损清零。
//   - 都在库房：不做任何事。
//
// 返回结果描述。
func (s *TireService) Swap(ctx context.Context, aID, bID int) (string, error) {
	if aID == bID {
		return "", ValidationError("cannot swap a tire with itself")
	}

	var msg string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 一次锁住两只，保持固定顺序避免互相等锁
		var tires []model.Tire
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND lifecycle = ?", []int{aID, bID}, model.TireActive).
			Order("id").
			Find(&tires).Error; err != nil {
			return err
		}
		if len(tires) != 2 {
			return NotFoundError("tire pair (%d, %d)", aID, bID)
		}

		a, b := &tires[0], &tires[1]
		if a.ID != aID {
			a, b = b, a
		}

		switch {
		case a.Mounted && b.Mounted:
			if err := swapMounted(tx, a, b); err != nil {
				return err
			}
			msg = fmt.Sprintf("swapped mounted tires #%d and #%d", a.ID, b.ID)
		case a.Mounted && !b.Mounted:
			if err := swapMountedWithDepot(tx, a, b); err != nil {
				return err
			}
			msg = fmt.Sprintf("tire #%d mounted, tire #%d sent to depot", b.ID, a.ID)
		case !a.Mounted && b.Mounted:
			if err := swapMountedWithDepot(tx, b, a); err != nil {
				return err
			}
			msg = fmt.Sprintf("tire #%d mounted, tire #%d sent to depot", a.ID, b.ID)
		default:
			msg = "both tires already in depot, nothing to do"
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Recap 轮胎翻新：状态转 RECAPPED、磨损清零，装没装车都适用。
// 返回更新的数量。
func (s *TireService) Recap(ctx context.Context, tireIDs []int) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range tireIDs {
			if _, err := getActiveTire(tx, id); err != nil {
				return err
			}
			if err := tx.Model(&model.Tire{}).Where("id = ?", id).Updates(map[string]interface{}{
				"condition": model.TireRecapped,
				"wear_km":   0,
			}).Error; err != nil {
				return fmt.Errorf("recap tire %d: %w", id, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// CreateInDepot 在库房新建一只轮胎，磨损从 0 起
func (s *TireService) CreateInDepot(ctx context.Context, condition model.TireCondition) (*model.Tire, error) {
	if condition == "" {
		condition = model.TireNew
	}
	if !condition.Valid() {
		return nil, ValidationError("unknown tire condition %q", condition)
	}

	var tire model.Tire
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tire = model.Tire{
			Condition: condition,
			Lifecycle: model.TireActive,
		}
		if err := tx.Create(&tire).Error; err != nil {
			return fmt.Errorf("create depot tire: %w", err)
		}
		return upsertDepotEntry(tx, tire.ID)
	})
	if err != nil {
		return nil, err
	}
	return &tire, nil
}

// DeleteFromDepot 物理删除库房轮胎。只有在库的才允许硬删，
// 上过车的删除走 Remove（软删）。返回删除的数量。
func (s *TireService) DeleteFromDepot(ctx context.Context, tireIDs []int) (int, error) {
	var deleted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.TireDepotEntry{}, "tire_id IN ?", tireIDs).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Tire{}, "id IN ? AND vehicle_id IS NULL AND mounted = ?", tireIDs, false)
		if res.Error != nil {
			return res.Error
		}
		deleted = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Remove 软删除：标记 removed、记录时间并下车，历史记录保留
func (s *TireService) Remove(ctx context.Context, tireIDs []int) (int, error) {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range tireIDs {
			if _, err := getActiveTire(tx, id); err != nil {
				return err
			}
			now := time.Now()
			if err := tx.Model(&model.Tire{}).Where("id = ?", id).Updates(map[string]interface{}{
				"lifecycle":       model.TireRemoved,
				"removed_at":      now,
				"vehicle_id":      nil,
				"mounted":         false,
				"position_number": 0,
			}).Error; err != nil {
				return fmt.Errorf("remove tire %d: %w", id, err)
			}
			if err := tx.Delete(&model.TireDepotEntry{}, "tire_id = ?", id).Error; err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListByVehicle 某辆车当前已装车的轮胎，按位置排序
func (s *TireService) ListByVehicle(ctx context.Context, vehicleID int) ([]model.Tire, error) {
	var tires []model.Tire
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND mounted = ? AND lifecycle = ?", vehicleID, true, model.TireActive).
		Order("position_number").
		Find(&tires).Error
	return tires, err
}

// ListDepot 库房里的轮胎
func (s *TireService) ListDepot(ctx context.Context) ([]model.Tire, error) {
	var tires []model.Tire
	err := s.db.WithContext(ctx).
		Where("vehicle_id IS NULL AND mounted = ? AND lifecycle = ?", false, model.TireActive).
		Order("id").
		Find(&tires).Error
	return tires, err
}

// ---------------- 内部辅助 ----------------

// firstFreePosition 取第一个空位编号；位子用满时接在最大编号后面
func (s *TireService) firstFreePosition(tx *gorm.DB, vehicle *model.Vehicle) (int, error) {
	var used []int
	if err := tx.Model(&model.Tire{}).
		Where("vehicle_id = ? AND mounted = ?", vehicle.ID, true).
		Pluck("position_number", &used).Error; err != nil {
		return 0, err
	}

	usedSet := make(map[int]bool, len(used))
	maxUsed := 0
	for _, n := range used {
		usedSet[n] = true
		if n > maxUsed {
			maxUsed = n
		}
	}

	capacity := vehicle.AxleCount * s.cfg.PositionsPerAxle
	for n := 1; n <= capacity; n++ {
		if !usedSet[n] {
			return n, nil
		}
	}
	return maxUsed + 1, nil
}

// swapMounted 都在车上：三步换位
func swapMounted(tx *gorm.DB, a, b *model.Tire) error {
	aVeh, aNro := a.VehicleID, a.PositionNumber
	bVeh, bNro := b.VehicleID, b.PositionNumber

	// 第一步：空出 a 的位置
	if err := tx.Model(&model.Tire{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"vehicle_id": nil, "mounted": false, "position_number": 0,
	}).Error; err != nil {
		return err
	}
	// 第二步：b 进 a 的位置
	if err := tx.Model(&model.Tire{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"vehicle_id": aVeh, "mounted": true, "position_number": aNro,
	}).Error; err != nil {
		if isUniqueViolation(err) {
			return ConflictError("position %d is already occupied", aNro)
		}
		return err
	}
	// 第三步：a 进 b 原来的位置
	if err := tx.Model(&model.Tire{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"vehicle_id": bVeh, "mounted": true, "position_number": bNro,
	}).Error; err != nil {
		if isUniqueViolation(err) {
			return ConflictError("position %d is already occupied", bNro)
		}
		return err
	}
	// 都在车上，库房登记一律清掉
	return tx.Delete(&model.TireDepotEntry{}, "tire_id IN ?", []int{a.ID, b.ID}).Error
}

// swapMountedWithDepot mounted 下库房，depot 顶上它的位置
func swapMountedWithDepot(tx *gorm.DB, mounted, depot *model.Tire) error {
	veh, nro := mounted.VehicleID, mounted.PositionNumber

	// 先下后上，别撞唯一约束
	if err := tx.Model(&model.Tire{}).Where("id = ?", mounted.ID).Updates(map[string]interface{}{
		"vehicle_id": nil, "mounted": false, "position_number": 0,
	}).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{
		"vehicle_id": veh, "mounted": true, "position_number": nro,
	}
	if depot.Condition == model.TireNew {
		updates["wear_km"] = 0
	}
	if err := tx.Model(&model.Tire{}).Where("id = ?", depot.ID).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return ConflictError("position %d is already occupied", nro)
		}
		return err
	}

	if err := upsertDepotEntry(tx, mounted.ID); err != nil {
		return err
	}
	return tx.Delete(&model.TireDepotEntry{}, "tire_id = ?", depot.ID).Error
}

// dismountToDepot 把一只胎从车上移到库房
func dismountToDepot(tx *gorm.DB, tireID int) error {
	if err := tx.Model(&model.Tire{}).Where("id = ?", tireID).Updates(map[string]interface{}{
		"vehicle_id":      nil,
		"mounted":         false,
		"position_number": 0,
	}).Error; err != nil {
		return err
	}
	return upsertDepotEntry(tx, tireID)
}

// upsertDepotEntry 库房登记，重复入库刷新时间
func upsertDepotEntry(tx *gorm.DB, tireID int) error {
	entry := model.TireDepotEntry{TireID: tireID, EnteredAt: time.Now()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tire_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"entered_at"}),
	}).Create(&entry).Error
}

// getActiveTire 取未软删的轮胎
func getActiveTire(tx *gorm.DB, id int) (*model.Tire, error) {
	var tire model.Tire
	err := tx.Where("id = ? AND lifecycle = ?", id, model.TireActive).First(&tire).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("tire %d", id)
		}
		return nil, err
	}
	return &tire, nil
}

func tireIDs(tires []model.Tire) []int {
	ids := make([]int, 0, len(tires))
	for _, t := range tires {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *TireService) notifyWorn(tire *model.Tire, vehicleID int) {
	if s.alerts == nil {
		return
	}
	s.alerts.Publish(model.AlertMessage{
		Type:      model.AlertTireWornToUsed,
		VehicleID: vehicleID,
		SubjectID: tire.ID,
		Title:     "tire worn to used condition",
		Content:   fmt.Sprintf("tire %d on vehicle %d crossed %d km wear", tire.ID, vehicleID, s.cfg.TireUsedThresholdKm),
	})
}
