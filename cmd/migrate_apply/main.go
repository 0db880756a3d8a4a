// Lists or applies the SQL migrations for the Postgres store. SQLite needs
// none; its store creates the schema on open.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"todoapp/internal/config"
	"todoapp/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	apply := flag.Bool("apply", false, "apply the migrations instead of listing them")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "directory with the .sql files")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set; only the postgres store takes migrations")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer pool.Close()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("read migrations dir", "dir", *dir, "error", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if !*apply {
			fmt.Println(name)
			continue
		}
		sql, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		logger.Info("applied migration", "file", name)
	}
}
