package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"figurinha-studio/internal/config"
	"figurinha-studio/internal/db"
	"figurinha-studio/internal/importer"
	"figurinha-studio/internal/repository/category"
	"figurinha-studio/internal/repository/pack"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a pack or category CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Fatalf("read file: %v", err)
	}
	kind, err := importer.DetectKind(bytes.NewReader(data))
	if err != nil {
		logger.Fatalf("detect file kind: %v", err)
	}

	imp := importer.NewCSVImporter(bytes.NewReader(data), pack.NewPostgres(pool, logger), category.NewPostgres(pool))

	start := time.Now()
	var count int
	switch kind {
	case importer.KindCategories:
		count, err = imp.RunCategories(ctx)
	default:
		count, err = imp.Run(ctx)
	}
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d %s in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}
