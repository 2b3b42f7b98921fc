package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTripDeltasCreate(t *testing.T) {
	deltas := tripDeltas(7, 350, 0, 0)
	assert.Equal(t, map[int]float64{7: 350}, deltas)
}

func TestTripDeltasDelete(t *testing.T) {
	deltas := tripDeltas(0, 0, 7, 350)
	assert.Equal(t, map[int]float64{7: -350}, deltas)
}

func TestTripDeltasSameVehicleEdit(t *testing.T) {
	deltas := tripDeltas(7, 500, 7, 350)
	assert.Equal(t, map[int]float64{7: 150}, deltas)
}

// 净差为 0 的条目要保留：编辑可能只改了日期，油周期仍需重算
func TestTripDeltasSameVehicleNoChange(t *testing.T) {
	deltas := tripDeltas(7, 350, 7, 350)
	assert.Equal(t, map[int]float64{7: 0}, deltas)
}

func TestTripDeltasVehicleChanged(t *testing.T) {
	deltas := tripDeltas(9, 500, 7, 350)
	assert.Equal(t, map[int]float64{7: -350, 9: 500}, deltas)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 0, roundKm(0))
	assert.Equal(t, 350, roundKm(350.4))
	assert.Equal(t, 351, roundKm(350.5))
	assert.Equal(t, -350, roundKm(-350.4))
	assert.Equal(t, -351, roundKm(-350.5))
}
