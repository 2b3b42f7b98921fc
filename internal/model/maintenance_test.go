package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOilSubsystemValid(t *testing.T) {
	assert.True(t, OilEngine.Valid())
	assert.True(t, OilGearbox.Valid())
	assert.False(t, OilSubsystem("brake").Valid())
	assert.False(t, OilSubsystem("").Valid())
}

func TestOilCyclePercentUsed(t *testing.T) {
	cycle := OilCycle{AccumulatedKm: 15000, LifeLimitKm: 30000}
	assert.InDelta(t, 50, cycle.PercentUsed(), 0.001)

	// 超寿命封顶 100
	cycle.AccumulatedKm = 45000
	assert.Equal(t, 100.0, cycle.PercentUsed())

	// 寿命未配置时不报告进度
	cycle.LifeLimitKm = 0
	assert.Equal(t, 0.0, cycle.PercentUsed())
}

func TestTireConditionValid(t *testing.T) {
	assert.True(t, TireNew.Valid())
	assert.True(t, TireRecapped.Valid())
	assert.True(t, TireUsed.Valid())
	assert.False(t, TireCondition("bald").Valid())
}

func TestTireInDepot(t *testing.T) {
	vehicleID := 3
	mounted := Tire{VehicleID: &vehicleID, Mounted: true, Lifecycle: TireActive}
	assert.False(t, mounted.InDepot())

	depot := Tire{Mounted: false, Lifecycle: TireActive}
	assert.True(t, depot.InDepot())
}

func TestWearCapKm(t *testing.T) {
	assert.Equal(t, 100000, WearCapKm[TireNew])
	assert.Equal(t, 80000, WearCapKm[TireRecapped])
	assert.Equal(t, 50000, WearCapKm[TireUsed])
}
