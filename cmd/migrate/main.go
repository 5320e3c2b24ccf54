package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/placeroute/internal/pkg/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("placeroute-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool, ".up.sql", false)
	case "down":
		runMigrations(ctx, pool, ".down.sql", true)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func migrationFiles(suffix string, reverse bool) ([]string, error) {
	entries, err := fs.Glob(migrations, "migrations/*"+suffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}
	return entries, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, suffix string, reverse bool) {
	files, err := migrationFiles(suffix, reverse)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}

	for _, f := range files {
		data, err := migrations.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", strings.TrimPrefix(f, "migrations/"))
	}

	log.Println("all migrations applied")
}
