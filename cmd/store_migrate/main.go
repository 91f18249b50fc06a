package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/calebrosario/pregame/internal/storage"
	"github.com/calebrosario/pregame/internal/storage/postgres"
	sqlstore "github.com/calebrosario/pregame/internal/storage/sqlite"
)

// schemaStore adds the destructive admin operation both backends
// implement but the runtime Store interface leaves out.
type schemaStore interface {
	storage.Store
	DropTables(ctx context.Context) error
}

func main() {
	godotenv.Load()

	var store schemaStore
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err = postgres.Open(dsn)
	} else {
		store, err = sqlstore.Open(os.Getenv("SQLITE_PATH"))
	}
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if len(os.Args) > 1 && os.Args[1] == "drop" {
		if err := store.DropTables(ctx); err != nil {
			log.Fatalf("drop tables: %v", err)
		}
		log.Printf("store tables dropped")
		return
	}

	if err := store.Init(ctx); err != nil {
		log.Fatalf("init store: %v", err)
	}
	log.Printf("store schema ready")
}
