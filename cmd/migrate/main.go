/*
main.go - Schema migration entry point

PURPOSE:
  Applies the persistent store's schema to the target Postgres database
  and exits. postgres.Open runs the full migration idempotently, so this
  command is safe to run repeatedly (e.g. once per deploy).

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional; see config.Load)
  -dsn     Postgres DSN, overrides the config file and PAYMENTFLOW_DATABASE_DSN

SEE ALSO:
  - config/config.go: configuration loading
  - store/postgres/postgres.go: schema and migration
*/
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/warp/paymentflow/config"
	"github.com/warp/paymentflow/store/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dsn := flag.String("dsn", "", "Postgres DSN (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	defer store.Close()

	log.Println("schema migrated successfully")
}
