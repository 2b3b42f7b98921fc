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

// newTripStack 组装一套不带缓存的服务链：行程写操作直接驱动重算
func newTripStack(db *gorm.DB) (*TripService, *OilService, *TireService) {
	cfg := testMaintenanceConfig()
	oil := NewOilService(db, cfg)
	tires := NewTireService(db, cfg)
	recalc := NewRecalcService(oil, tires, nil)
	return NewTripService(db, recalc), oil, tires
}

func TestTripCreateDrivesMaintenanceCounters(t *testing.T) {
	db := setupTestDB(t)
	trips, oil, tires := newTripStack(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "TRIP001", 2)
	require.NoError(t, tires.CreateDefaultSet(db, vehicle))
	currencyID, originID, destID := seedTripRefs(t, db)

	trip, err := trips.Create(ctx, &model.CreateTripRequest{
		VehicleID:    vehicle.ID,
		TripDate:     today(),
		OriginID:     originID,
		DestID:       destID,
		DistanceKm:   350.4,
		FreightValue: 1000,
		CurrencyID:   currencyID,
		PerDiemPct:   10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 900, trip.TotalProfit, 0.001)

	// 油周期计入全程，轮胎按取整后的公里磨损
	pair, err := oil.Recompute(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.InDelta(t, 350.4, pair.Engine.AccumulatedKm, 0.001)

	mounted, err := tires.ListByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	for _, tire := range mounted {
		assert.Equal(t, 350, tire.WearKm)
	}
}

func TestTripUpdateAppliesDelta(t *testing.T) {
	db := setupTestDB(t)
	trips, oil, tires := newTripStack(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "TRIP002", 2)
	require.NoError(t, tires.CreateDefaultSet(db, vehicle))
	currencyID, originID, destID := seedTripRefs(t, db)

	trip, err := trips.Create(ctx, &model.CreateTripRequest{
		VehicleID:  vehicle.ID,
		TripDate:   today(),
		OriginID:   originID,
		DestID:     destID,
		DistanceKm: 300,
		CurrencyID: currencyID,
	})
	require.NoError(t, err)

	shorter := 100.0
	_, err = trips.Update(ctx, trip.ID, &model.UpdateTripRequest{DistanceKm: &shorter})
	require.NoError(t, err)

	pair, err := oil.Recompute(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, pair.Engine.AccumulatedKm, 0.001)

	// 磨损吃了 -200 的增量
	mounted, err := tires.ListByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	for _, tire := range mounted {
		assert.Equal(t, 100, tire.WearKm)
	}
}

func TestTripMovedToAnotherVehicle(t *testing.T) {
	db := setupTestDB(t)
	trips, oil, tires := newTripStack(db)
	ctx := context.Background()

	vehicleA := seedVehicle(t, db, "TRIP003A", 2)
	vehicleB := seedVehicle(t, db, "TRIP003B", 2)
	require.NoError(t, tires.CreateDefaultSet(db, vehicleA))
	require.NoError(t, tires.CreateDefaultSet(db, vehicleB))
	currencyID, originID, destID := seedTripRefs(t, db)

	trip, err := trips.Create(ctx, &model.CreateTripRequest{
		VehicleID:  vehicleA.ID,
		TripDate:   today(),
		OriginID:   originID,
		DestID:     destID,
		DistanceKm: 400,
		CurrencyID: currencyID,
	})
	require.NoError(t, err)

	_, err = trips.Update(ctx, trip.ID, &model.UpdateTripRequest{VehicleID: vehicleB.ID})
	require.NoError(t, err)

	// 旧车清零、新车计入全程
	pairA, err := oil.Recompute(ctx, vehicleA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pairA.Engine.AccumulatedKm)

	pairB, err := oil.Recompute(ctx, vehicleB.ID)
	require.NoError(t, err)
	assert.InDelta(t, 400, pairB.Engine.AccumulatedKm, 0.001)

	mountedA, err := tires.ListByVehicle(ctx, vehicleA.ID)
	require.NoError(t, err)
	for _, tire := range mountedA {
		assert.Equal(t, 0, tire.WearKm)
	}
	mountedB, err := tires.ListByVehicle(ctx, vehicleB.ID)
	require.NoError(t, err)
	for _, tire := range mountedB {
		assert.Equal(t, 400, tire.WearKm)
	}
}

func TestTripDeleteRollsBackCounters(t *testing.T) {
	db := setupTestDB(t)
	trips, oil, tires := newTripStack(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "TRIP004", 2)
	require.NoError(t, tires.CreateDefaultSet(db, vehicle))
	currencyID, originID, destID := seedTripRefs(t, db)

	trip, err := trips.Create(ctx, &model.CreateTripRequest{
		VehicleID:  vehicle.ID,
		TripDate:   today(),
		OriginID:   originID,
		DestID:     destID,
		DistanceKm: 250,
		CurrencyID: currencyID,
	})
	require.NoError(t, err)

	require.NoError(t, trips.Delete(ctx, trip.ID))

	pair, err := oil.Recompute(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pair.Engine.AccumulatedKm)

	mounted, err := tires.ListByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	for _, tire := range mounted {
		assert.Equal(t, 0, tire.WearKm)
	}
}

func TestTripCreateUnknownVehicle(t *testing.T) {
	db := setupTestDB(t)
	trips, _, _ := newTripStack(db)
	currencyID, originID, destID := seedTripRefs(t, db)

	_, err := trips.Create(context.Background(), &model.CreateTripRequest{
		VehicleID:  999,
		TripDate:   today(),
		OriginID:   originID,
		DestID:     destID,
		DistanceKm: 100,
		CurrencyID: currencyID,
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTripExpensesRetotalProfit(t *testing.T) {
	db := setupTestDB(t)
	trips, _, tires := newTripStack(db)
	ctx := context.Background()

	vehicle := seedVehicle(t, db, "TRIP005", 2)
	require.NoError(t, tires.CreateDefaultSet(db, vehicle))
	currencyID, originID, destID := seedTripRefs(t, db)

	trip, err := trips.Create(ctx, &model.CreateTripRequest{
		VehicleID:    vehicle.ID,
		TripDate:     today(),
		OriginID:     originID,
		DestID:       destID,
		DistanceKm:   100,
		FreightValue: 1000,
		CurrencyID:   currencyID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1000, trip.TotalProfit, 0.001)

	expense, err := trips.AddExpense(ctx, trip.ID, &model.AddTripExpenseRequest{
		Description: "fuel",
		Amount:      300,
	})
	require.NoError(t, err)

	reloaded, err := trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 300, reloaded.Expenses, 0.001)
	assert.InDelta(t, 700, reloaded.TotalProfit, 0.001)

	// 开销超过运费：净收益落 0 不为负
	_, err = trips.AddExpense(ctx, trip.ID, &model.AddTripExpenseRequest{Amount: 900})
	require.NoError(t, err)
	reloaded, err = trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reloaded.TotalProfit)

	// 删开销回摊
	require.NoError(t, trips.DeleteExpense(ctx, expense.ID))
	reloaded, err = trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900, reloaded.Expenses, 0.001)
	assert.InDelta(t, 100, reloaded.TotalProfit, 0.001)
}
