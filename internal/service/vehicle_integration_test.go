//go:build integration

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cargoease/api/internal/model"
)

func newVehicleStack(db *gorm.DB) (*VehicleService, *TireService) {
	cfg := testMaintenanceConfig()
	oil := NewOilService(db, cfg)
	tires := NewTireService(db, cfg)
	return NewVehicleService(db, cfg, oil, tires, nil), tires
}

func TestVehicleRegistrationCreatesFullSetup(t *testing.T) {
	db := setupTestDB(t)
	vehicles, tires := newVehicleStack(db)
	ctx := context.Background()

	vehicle, err := vehicles.Create(ctx, &model.CreateVehicleRequest{
		Brand:       "Volvo",
		Model:       "FH16",
		YearBuilt:   2021,
		PlateNumber: "VEH001",
		AxleCount:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", vehicle.Status)

	// 整套轮胎：3 轴 × 4 位，全新、磨损 0
	mounted, err := tires.ListByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	require.Len(t, mounted, 12)
	for i, tire := range mounted {
		assert.Equal(t, i+1, tire.PositionNumber)
		assert.Equal(t, model.TireNew, tire.Condition)
	}

	// 两个油周期同时建出，起点为登记时刻
	var cycles []model.OilCycle
	require.NoError(t, db.Where("vehicle_id = ?", vehicle.ID).Order("subsystem").Find(&cycles).Error)
	require.Len(t, cycles, 2)
	assert.Equal(t, model.OilEngine, cycles[0].Subsystem)
	assert.Equal(t, 30000, cycles[0].LifeLimitKm)
	assert.Equal(t, model.OilGearbox, cycles[1].Subsystem)
	assert.Equal(t, 100000, cycles[1].LifeLimitKm)
}

func TestVehicleDuplicatePlateRejected(t *testing.T) {
	db := setupTestDB(t)
	vehicles, _ := newVehicleStack(db)
	ctx := context.Background()

	req := &model.CreateVehicleRequest{
		Brand:       "Volvo",
		Model:       "FH16",
		YearBuilt:   2021,
		PlateNumber: "VEH002",
		AxleCount:   2,
	}
	_, err := vehicles.Create(ctx, req)
	require.NoError(t, err)

	_, err = vehicles.Create(ctx, req)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestVehicleUpdateKeepsAxleCount(t *testing.T) {
	db := setupTestDB(t)
	vehicles, _ := newVehicleStack(db)
	ctx := context.Background()

	vehicle, err := vehicles.Create(ctx, &model.CreateVehicleRequest{
		Brand:       "Scania",
		Model:       "R450",
		YearBuilt:   2019,
		PlateNumber: "VEH003",
		AxleCount:   3,
	})
	require.NoError(t, err)

	updated, err := vehicles.Update(ctx, vehicle.ID, &model.UpdateVehicleRequest{
		Brand:  "Scania",
		Status: "inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, 3, updated.AxleCount)
}

func TestMaintenanceSummaryWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	vehicles, tires := newVehicleStack(db)
	ctx := context.Background()

	vehicle, err := vehicles.Create(ctx, &model.CreateVehicleRequest{
		Brand:       "MAN",
		Model:       "TGX",
		YearBuilt:   2022,
		PlateNumber: "VEH004",
		AxleCount:   2,
	})
	require.NoError(t, err)

	_, err = tires.Accumulate(ctx, vehicle.ID, 500)
	require.NoError(t, err)

	summary, err := vehicles.MaintenanceSummary(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, summary.VehicleID)
	assert.Equal(t, "engine", summary.Engine.Subsystem)
	assert.Equal(t, "gearbox", summary.Gearbox.Subsystem)
	require.Len(t, summary.Tires, 8)

	// 位置编号解码回 (轴, 位)，磨损上限随状态给出
	first := summary.Tires[0]
	assert.Equal(t, 1, first.Axle)
	assert.Equal(t, 1, first.Slot)
	assert.Equal(t, 500, first.WearKm)
	assert.Equal(t, model.WearCapKm[model.TireNew], first.CapKm)

	last := summary.Tires[7]
	assert.Equal(t, 2, last.Axle)
	assert.Equal(t, 4, last.Slot)
}

func TestVehicleGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	vehicles, _ := newVehicleStack(db)

	_, err := vehicles.Get(context.Background(), 12345)
	assert.True(t, errors.Is(err, ErrNotFound))
}
