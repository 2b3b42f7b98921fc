package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cargoease/api/internal/config"
	"cargoease/api/internal/model"
	"cargoease/api/internal/server"
)

func main() {
	log.Println("[API] Starting CargoEase API Server...")

	// Load .env if present (development convenience)
	if err := godotenv.Load(); err == nil {
		log.Println("[API] Loaded .env file")
	}

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("[API] Failed to connect to database: %v", err)
	}
	log.Println("[API] Connected to database")

	// Auto migrate
	if err := autoMigrate(db); err != nil {
		log.Fatalf("[API] Failed to migrate database: %v", err)
	}
	log.Println("[API] Database migrated")

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("[API] Failed to connect to Redis: %v", err)
	}
	log.Println("[API] Connected to Redis")
	defer redisClient.Close()

	// Connect to NATS
	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to NATS: %v", err)
	}
	log.Println("[API] Connected to NATS")
	defer natsConn.Close()

	// Create and setup server
	srv := server.NewServer(cfg, db, redisClient, natsConn)
	if err := srv.Setup(); err != nil {
		log.Fatalf("[API] Failed to setup server: %v", err)
	}

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	go func() {
		if err := srv.Run(addr); err != nil {
			log.Fatalf("[API] Failed to start server: %v", err)
		}
	}()

	log.Printf("[API] Server ready on %s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("[API] Shutting down...")

	// Graceful shutdown
	srv.Shutdown()
	log.Println("[API] Server stopped")
}

func autoMigrate(db *gorm.DB) error {
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
		return err
	}

	// 同一辆车的同一胎位只能挂一条在装轮胎；
	// 部分唯一索引超出 gorm tag 能力，手工建
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_tire_vehicle_position
		ON tires (vehicle_id, position_number) WHERE mounted`).Error
}
