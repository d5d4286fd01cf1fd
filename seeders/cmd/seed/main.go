package main

import (
	"context"
	"flag"
	"log"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/config"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/database/postgresql"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/seeders"
)

func main() {
	printTokens := flag.Bool("tokens", false, "print a dev JWT for every seeded user")
	flag.Parse()

	cfg := config.New()

	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	if err := postgresql.RunMigrations(cfg.Postgres.DSN); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	ctx := context.Background()
	if err := seeders.Run(ctx, db); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("seeding finished")

	if *printTokens {
		if err := seeders.PrintDevTokens(ctx, db, cfg); err != nil {
			log.Fatalf("failed to print dev tokens: %v", err)
		}
	}
}
