// Package main provides admin role management utilities for Storyhive.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"storyhive/internal/config"
	"storyhive/internal/database"
	"storyhive/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <email>      - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <email>       - Demote user from admin")
		fmt.Println("  go run ./cmd/admin list-admins          - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin promote <email>")
			os.Exit(1)
		}
		setAdmin(db, os.Args[2], true)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin demote <email>")
			os.Exit(1)
		}
		setAdmin(db, os.Args[2], false)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setAdmin(db *gorm.DB, email string, isAdmin bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	var profile models.Profile
	if err := db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("No profile found for %s\n", email)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if profile.IsAdmin == isAdmin {
		if isAdmin {
			fmt.Printf("%s (ID: %d) is already an admin\n", profile.Email, profile.ID)
		} else {
			fmt.Printf("%s (ID: %d) is not an admin\n", profile.Email, profile.ID)
		}
		return
	}

	if err := db.Model(&profile).Update("is_admin", isAdmin).Error; err != nil {
		log.Fatalf("Failed to update profile: %v", err)
	}

	if isAdmin {
		fmt.Printf("Promoted %s (ID: %d) to admin\n", profile.Email, profile.ID)
	} else {
		fmt.Printf("Demoted %s (ID: %d) from admin\n", profile.Email, profile.ID)
	}
}

func listAdmins(db *gorm.DB) {
	var admins []models.Profile
	if err := db.Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Println("Current admins:")
	for _, admin := range admins {
		fmt.Printf("  ID: %d | Name: %s | Email: %s\n", admin.ID, admin.FullName, admin.Email)
	}
}
