package main

import (
	"log"

	"github.com/addisbingo/bingo-backend/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] loading config: %v", err)
	}
	if _, err := config.SetupDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}
	log.Println("Database migration completed successfully")
}
