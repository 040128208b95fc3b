package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strollcast/strollcast/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("strollcast-migrate")
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
		run(ctx, pool, upFiles())
	case "down":
		run(ctx, pool, downFiles())
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// upFiles returns the forward migrations in numeric order.
func upFiles() []string {
	files := glob("*.sql")
	out := files[:0]
	for _, f := range files {
		if !strings.HasSuffix(f, ".down.sql") {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// downFiles returns the rollback migrations, newest first.
func downFiles() []string {
	files := glob("*.down.sql")
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files
}

func glob(pattern string) []string {
	files, err := filepath.Glob(filepath.Join(migrationsDir, pattern))
	if err != nil {
		log.Fatalf("glob %s: %v", pattern, err)
	}
	return files
}

func run(ctx context.Context, pool *pgxpool.Pool, files []string) {
	if len(files) == 0 {
		log.Fatal("no migration files found")
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}
