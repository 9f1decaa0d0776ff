package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/config"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/migrations"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := run(db, *mode, migrations.FS); err != nil {
		logger.L().Fatal("migrate", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(db *sql.DB, mode string, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return migrateUp(db, fsys, files)
	case "down":
		return migrateDown(db, fsys, files)
	default:
		return fmt.Errorf("unknown mode %q (use up or down)", mode)
	}
}

func migrateUp(db *sql.DB, fsys fs.FS, files []string) error {
	log := logger.L()
	for _, version := range files {
		var applied bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check %s: %w", version, err)
		}
		if applied {
			log.Debug("skip applied migration", zap.String("version", version))
			continue
		}

		content, err := fs.ReadFile(fsys, version)
		if err != nil {
			return fmt.Errorf("read %s: %w", version, err)
		}

		log.Info("applying migration", zap.String("version", version))
		if err := applyInTx(db, extractSection(string(content), "Up"),
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("apply %s: %w", version, err)
		}
	}
	log.Info("migrations up to date", zap.Int("files", len(files)))
	return nil
}

func migrateDown(db *sql.DB, fsys fs.FS, files []string) error {
	log := logger.L()

	var version string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find last migration: %w", err)
	}

	i := sort.SearchStrings(files, version)
	if i == len(files) || files[i] != version {
		return fmt.Errorf("migration file not found for version %s", version)
	}

	content, err := fs.ReadFile(fsys, version)
	if err != nil {
		return fmt.Errorf("read %s: %w", version, err)
	}

	log.Info("rolling back migration", zap.String("version", version))
	if err := applyInTx(db, extractSection(string(content), "Down"),
		`DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
		return fmt.Errorf("roll back %s: %w", version, err)
	}
	return nil
}

// applyInTx runs the migration body and its bookkeeping statement atomically.
func applyInTx(db *sql.DB, body, record, version string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(body); err != nil {
		return err
	}
	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// extractSection returns the lines between "-- +migrate <section>" and the
// next marker.
func extractSection(content, section string) string {
	var b strings.Builder
	in := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if in {
				break
			}
			in = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-- +migrate")) == section
			continue
		}
		if in {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
