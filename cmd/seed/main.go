package main

import (
	"context"
	"flag"
	"log"
	"os"

	"figurinha-studio/internal/config"
	"figurinha-studio/internal/db"
	"figurinha-studio/internal/seed"
)

func main() {
	var admin seed.Admin
	flag.StringVar(&admin.Email, "admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "Email of the admin account to create or promote")
	flag.StringVar(&admin.Password, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Password for a newly created admin account")
	flag.StringVar(&admin.FullName, "admin-name", "Admin", "Full name for a newly created admin account")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, admin); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
