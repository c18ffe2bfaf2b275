package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"food-redistribution-api-server/config"
	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the default admin account if it does not exist yet.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	username := cfg.Username
	if username == "" {
		username = "admin"
	}
	password := cfg.Password
	if password == "" {
		password = "adminpassword"
	}

	adminCollection := db.Collection("admins")

	count, err := adminCollection.CountDocuments(context.Background(), bson.M{"username": username})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin account already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin account not found. Seeding...")
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Username: username,
		Password: hashedPassword,
		Role:     auth.RoleAdmin,
	}

	if _, err := adminCollection.InsertOne(context.Background(), admin); err != nil {
		return err
	}

	log.Println("Admin account seeded successfully.")
	return nil
}

// SeedOrganizations inserts two demo organizations when the collection is
// empty, so a fresh install has a working reserve flow to try.
func SeedOrganizations(db *mongo.Database) error {
	orgCollection := db.Collection("organizations")

	count, err := orgCollection.CountDocuments(context.Background(), bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("No organizations found. Seeding demo organizations...")

	demos := []models.Organization{
		{
			OrganizationID:   newOrganizationID(),
			Name:             "Food Bank Organization",
			Email:            "foodbank@example.com",
			Phone:            "123-456-7890",
			Address:          "123 Main St, City",
			Type:             "NGO",
			RegistrationDate: time.Now(),
		},
		{
			OrganizationID:   newOrganizationID(),
			Name:             "Community Kitchen",
			Email:            "kitchen@example.com",
			Phone:            "987-654-3210",
			Address:          "456 Oak St, City",
			Type:             "CHARITY",
			RegistrationDate: time.Now(),
		},
	}

	for i := range demos {
		hashed, err := auth.HashPassword("password123")
		if err != nil {
			return err
		}
		demos[i].Password = hashed
		if _, err := orgCollection.InsertOne(context.Background(), demos[i]); err != nil {
			return err
		}
	}

	log.Println("Demo organizations seeded successfully.")
	return nil
}

func newOrganizationID() string {
	return fmt.Sprintf("ORG-%s", strings.ToUpper(uuid.New().String()[:8]))
}
