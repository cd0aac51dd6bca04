package main

import (
	"context"
	"flag"
	"log"
	"os"

	"figurinha-studio/internal/config"
	"figurinha-studio/internal/db"
	"figurinha-studio/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "Roll back every migration instead of applying them")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	if *down {
		if err := migrate.Down(ctx, pool); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Println("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	version, dirty, ok, err := migrate.Version(ctx, pool)
	switch {
	case err != nil:
		logger.Fatalf("read schema version: %v", err)
	case !ok:
		logger.Println("migrations applied, no schema version recorded")
	default:
		logger.Printf("migrations applied version=%d dirty=%t", version, dirty)
	}
}
