package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/zonemap/internal/adapters/postgres"
	"github.com/samirrijal/zonemap/internal/pkg/config"
	"github.com/samirrijal/zonemap/internal/pkg/logging"
)

const downSuffix = ".down.sql"

func main() {
	dir := flag.String("dir", "migrations", "directory holding NNN_name.sql files")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: migrate [-dir migrations] <up|down>")
	}

	cfg, err := config.Load("zonemap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if _, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("create schema_migrations: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		err = up(ctx, db, *dir)
	case "down":
		err = down(ctx, db, *dir)
	default:
		err = fmt.Errorf("unknown command: %s", flag.Arg(0))
	}
	if err != nil {
		log.Fatal(err)
	}
}

// up applies every pending migration in name order.
func up(ctx context.Context, db *postgres.DB, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	slices.Sort(files)

	applied := 0
	for _, f := range files {
		if strings.HasSuffix(f, downSuffix) {
			continue
		}
		name := filepath.Base(f)
		var done bool
		if err := db.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&done); err != nil {
			return err
		}
		if done {
			continue
		}
		if err := apply(ctx, db, f, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			return err
		}
		applied++
	}
	slog.Info("migrations applied", "count", applied)
	return nil
}

// down reverts the most recent migration that has a .down.sql file.
func down(ctx context.Context, db *postgres.DB, dir string) error {
	var name string
	err := db.Pool.QueryRow(ctx,
		`SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1`).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("nothing to revert")
		return nil
	}
	if err != nil {
		return err
	}

	f := filepath.Join(dir, strings.TrimSuffix(name, ".sql")+downSuffix)
	if _, err := os.Stat(f); err != nil {
		return fmt.Errorf("%s cannot be reverted: %w", name, err)
	}
	return apply(ctx, db, f, `DELETE FROM schema_migrations WHERE name = $1`, name)
}

// apply runs a migration file and its bookkeeping statement in one transaction.
func apply(ctx context.Context, db *postgres.DB, file, record, name string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, record, name)
		return err
	})
	if err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}
	slog.Info("migration", "file", file)
	return nil
}
