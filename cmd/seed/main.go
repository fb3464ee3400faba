// Command main runs the database seeder for Mingle.
package main

import (
	"flag"
	"log"

	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 0, "Number of fake attendees to create")
	shouldClean := flag.Bool("clean", false, "Clean the users table before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: admin account + %d attendees, clean=%v\n", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
