package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTripProfit(t *testing.T) {
	trip := Trip{FreightValue: 1000, PerDiemPct: 10, Expenses: 200}
	// 1000 - 100 (津贴) - 200 (开销) = 700
	assert.InDelta(t, 700, trip.Profit(), 0.001)
}

func TestTripProfitFloorsAtZero(t *testing.T) {
	trip := Trip{FreightValue: 100, PerDiemPct: 50, Expenses: 500}
	assert.Equal(t, 0.0, trip.Profit())
}

func TestTripProfitNoDeductions(t *testing.T) {
	trip := Trip{FreightValue: 1500}
	assert.InDelta(t, 1500, trip.Profit(), 0.001)
}
