// 行程变更后的保养计数同步

package service

import (
	"context"
	"fmt"
	"log"
	"math"

	"cargoease/api/internal/model"
)

// RecalcService 重算协调器。行程创建/编辑/删除后由行程持久层显式调用
// （提交之后），把公里变化推给油周期和轮胎两个子系统：
//   - 油周期整体重算（与增量无关，三种变更走同一条路径）；
//   - 轮胎按带下限的增量累加。
//
// 两个调用互相独立，顺序不影响最终状态。
type RecalcService struct {
	oil   *OilService
	tires *TireService
	cache *SummaryCache
}

// NewRecalcService 创建重算协调器
func NewRecalcService(oil *OilService, tires *TireService, cache *SummaryCache) *RecalcService {
	return &RecalcService{oil: oil, tires: tires, cache: cache}
}

// OnTripCreated 行程创建后回调
func (s *RecalcService) OnTripCreated(ctx context.Context, trip *model.Trip) error {
	deltas := tripDeltas(trip.VehicleID, trip.DistanceKm, 0, 0)
	return s.apply(ctx, deltas)
}

// OnTripUpdated 行程编辑后回调。prevVehicleID/prevDistance 是编辑前的值；
// 换了车辆时旧车减全程、新车加全程。
func (s *RecalcService) OnTripUpdated(ctx context.Context, trip *model.Trip, prevVehicleID int, prevDistance float64) error {
	deltas := tripDeltas(trip.VehicleID, trip.DistanceKm, prevVehicleID, prevDistance)
	return s.apply(ctx, deltas)
}

// OnTripDeleted 行程删除后回调
func (s *RecalcService) OnTripDeleted(ctx context.Context, trip *model.Trip) error {
	deltas := tripDeltas(0, 0, trip.VehicleID, trip.DistanceKm)
	return s.apply(ctx, deltas)
}

// apply 对每辆受影响的车：油周期重算 + 轮胎增量累加 + 面板缓存失效
func (s *RecalcService) apply(ctx context.Context, deltas map[int]float64) error {
	for vehicleID, delta := range deltas {
		if _, err := s.oil.Recompute(ctx, vehicleID); err != nil {
			return fmt.Errorf("recompute oil for vehicle %d: %w", vehicleID, err)
		}
		if _, err := s.tires.Accumulate(ctx, vehicleID, roundKm(delta)); err != nil {
			return fmt.Errorf("accumulate tire wear for vehicle %d: %w", vehicleID, err)
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, vehicleID); err != nil {
				log.Printf("[Recalc] Failed to invalidate summary cache for vehicle %d: %v", vehicleID, err)
			}
		}
	}
	return nil
}

// tripDeltas 计算每辆车的净公里变化。
// 创建：newVehicleID 加 newKm；删除：oldVehicleID 减 oldKm；
// 编辑同车：净差；编辑换车：旧车减旧程、新车加新程。
// 车辆 id 为 0 表示该侧不存在（创建没有旧值、删除没有新值）。
func tripDeltas(newVehicleID int, newKm float64, oldVehicleID int, oldKm float64) map[int]float64 {
	deltas := make(map[int]float64)
	if oldVehicleID > 0 {
		deltas[oldVehicleID] -= oldKm
	}
	if newVehicleID > 0 {
		// 同车净差为 0 时条目保留，油周期重算仍要跑（编辑可能只改了日期）
		deltas[newVehicleID] += newKm
	}
	return deltas
}

// roundKm 公里取整，四舍五入（0.5 进位），负数对称处理
func roundKm(km float64) int {
	if km >= 0 {
		return int(math.Floor(km + 0.5))
	}
	return -int(math.Floor(-km + 0.5))
}
