package main

import (
	"context"
	"log"
	"time"

	"food-redistribution-api-server/config"
	"food-redistribution-api-server/internal/api/routes"
	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/database"
	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/s3"
	"food-redistribution-api-server/internal/socket"
	"food-redistribution-api-server/internal/store"
	"food-redistribution-api-server/internal/sweeper"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env (optional) and configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured")
	}
	auth.JwtSecret = []byte(cfg.JWT.Secret)
	if cfg.JWT.Expiration != "" {
		lifetime, err := time.ParseDuration(cfg.JWT.Expiration)
		if err != nil {
			log.Fatalf("Invalid JWT expiration %q: %v", cfg.JWT.Expiration, err)
		}
		auth.TokenLifetime = lifetime
	}

	// 2. Connect MongoDB
	client, db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	// 3. Seed the default admin and demo organizations
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}
	if err := database.SeedOrganizations(db); err != nil {
		log.Fatalf("Failed to seed organizations: %v", err)
	}

	// 4. Build the donation service on the Mongo store
	mongoStore := store.NewMongoStore(db)
	service := &donation.Service{Store: mongoStore, Requests: mongoStore}

	// 5. Start the expiry sweeper
	if cfg.Sweeper.Enabled {
		sweep := &sweeper.Sweeper{Service: service, Interval: cfg.Sweeper.Interval}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sweep.Run(ctx)
		log.Printf("Expiry sweeper running every %s", cfg.Sweeper.Interval)
	}

	// 6. S3 uploader for donation photos
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	// 7. WebSocket hub for decision notifications
	wsHub := socket.NewHub()

	// 8. Wire everything into the router
	router := routes.SetupRouter(service, db, s3Uploader, wsHub, cfg)

	// 9. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
