package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samirrijal/snippetmap/internal/adapters/memstore"
	"github.com/samirrijal/snippetmap/internal/adapters/postgres"
	"github.com/samirrijal/snippetmap/internal/adapters/snippetapi"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	cfg, err := config.Load("snippetmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		files, err := postgres.Migrate(ctx, db)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		for _, f := range files {
			fmt.Printf("OK  %s\n", f)
		}
		log.Println("all migrations applied")
	case "down":
		if err := postgres.Drop(ctx, db); err != nil {
			log.Fatalf("drop: %v", err)
		}
		log.Println("snippets table dropped")
	case "seed":
		records, err := seedRecords(cfg.DevServer.SeedFile)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if err := postgres.NewSnippetRepo(db).Seed(ctx, records); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d snippets", len(records))
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// seedRecords reads the GeoJSON seed file, or the demo data when none is set.
func seedRecords(path string) ([]domain.PointRecord, error) {
	if path == "" {
		return memstore.Sample(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	feed, err := snippetapi.DecodeFeed(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return feed.Records, nil
}
