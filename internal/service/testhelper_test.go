//go:build integration

package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"cargoease/api/internal/config"
	"cargoease/api/internal/model"
	"cargoease/api/internal/testhelper"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return testhelper.SetupTestDB(t)
}

func testMaintenanceConfig() config.MaintenanceConfig {
	return config.MaintenanceConfig{
		EngineOilLifeKm:     30000,
		GearboxOilLifeKm:    100000,
		PositionsPerAxle:    4,
		TireUsedThresholdKm: 2000,
	}
}

// seedVehicle 直接建车（不带默认轮胎）
func seedVehicle(t *testing.T, db *gorm.DB, plate string, axles int) *model.Vehicle {
	t.Helper()
	vehicle := model.Vehicle{
		Brand:       "Scania",
		Model:       "R450",
		YearBuilt:   2020,
		PlateNumber: plate,
		AxleCount:   axles,
		Status:      "active",
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return &vehicle
}

// seedTripRefs 建行程外键需要的币种和两个地点
func seedTripRefs(t *testing.T, db *gorm.DB) (currencyID, originID, destID int) {
	t.Helper()
	currency := model.Currency{Name: "US Dollar", Code: "USD", Symbol: "$"}
	if err := db.Where("code = ?", currency.Code).FirstOrCreate(&currency).Error; err != nil {
		t.Fatalf("seed currency: %v", err)
	}
	origin := model.Location{Name: "Warehouse A"}
	dest := model.Location{Name: "Port B"}
	if err := db.Where("name = ?", origin.Name).FirstOrCreate(&origin).Error; err != nil {
		t.Fatalf("seed origin: %v", err)
	}
	if err := db.Where("name = ?", dest.Name).FirstOrCreate(&dest).Error; err != nil {
		t.Fatalf("seed dest: %v", err)
	}
	return currency.ID, origin.ID, dest.ID
}

// seedTrip 直接插入行程（绕开 TripService，重算由各测试自行触发）
func seedTrip(t *testing.T, db *gorm.DB, vehicleID int, date string, km float64) *model.Trip {
	t.Helper()
	currencyID, originID, destID := seedTripRefs(t, db)
	return seedTripWith(t, db, vehicleID, date, km, currencyID, originID, destID)
}

func seedTripWith(t *testing.T, db *gorm.DB, vehicleID int, date string, km float64, currencyID, originID, destID int) *model.Trip {
	t.Helper()
	tripDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse trip date: %v", err)
	}
	trip := model.Trip{
		VehicleID:    vehicleID,
		TripDate:     tripDate,
		OriginID:     originID,
		DestID:       destID,
		DistanceKm:   km,
		FreightValue: 1000,
		CurrencyID:   currencyID,
	}
	trip.TotalProfit = trip.Profit()
	if err := db.Create(&trip).Error; err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return &trip
}
