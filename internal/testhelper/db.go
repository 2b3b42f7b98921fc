// Package testhelper 提供集成测试共用的 postgres 容器。
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cargoease/api/internal/model"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// SetupTestDB 整个测试进程共享一个 postgres 容器，首次调用时启动并建表，
// 之后每个测试拿独立的 gorm 连接并清空数据。
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN, pgErr = startContainerAndMigrate()
	})
	if pgErr != nil {
		t.Fatalf("failed to setup test DB: %v", pgErr)
	}

	db, err := gorm.Open(postgres.Open(pgDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm connection: %v", err)
	}

	if err := db.Exec(`TRUNCATE vehicles, trips, trip_expenses, currencies, locations,
		oil_cycles, oil_change_records, tires, tire_depot_entries,
		drivers, clients, maintenance_alerts RESTART IDENTITY CASCADE`).Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return db
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable", host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return "", fmt.Errorf("gorm open: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Vehicle{},
		&model.Currency{},
		&model.Location{},
		&model.Trip{},
		&model.TripExpense{},
		&model.OilCycle{},
		&model.OilChangeRecord{},
		&model.Tire{},
		&model.TireDepotEntry{},
		&model.Driver{},
		&model.Client{},
		&model.MaintenanceAlert{},
	); err != nil {
		return "", fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_tire_vehicle_position
		ON tires (vehicle_id, position_number) WHERE mounted`).Error; err != nil {
		return "", fmt.Errorf("create partial unique index: %w", err)
	}

	return dsn, nil
}
