// Command main runs the database seeder for Storyhive.
package main

import (
	"flag"
	"log"

	"storyhive/internal/config"
	"storyhive/internal/database"
	"storyhive/internal/seed"
)

func main() {
	numReaders := flag.Int("readers", 25, "Number of reader accounts to create")
	numStories := flag.Int("stories", 40, "Number of stories to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (faster, dev only)")
	flag.Parse()

	log.Printf("Target: %d readers, %d stories, clean=%v", *numReaders, *numStories, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumReaders: *numReaders,
		NumStories: *numStories,
		SkipBcrypt: *skipBcrypt,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
