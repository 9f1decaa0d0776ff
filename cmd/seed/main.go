package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jairsl2206/restaurant-sub000/internal/config"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
)

type menuSeed struct {
	name     string
	price    string
	category string
}

var sampleMenu = []menuSeed{
	{"Tacos al pastor", "18.00", "Tacos"},
	{"Tacos de suadero", "18.00", "Tacos"},
	{"Quesadilla", "35.00", "Antojitos"},
	{"Pozole", "95.00", "Platillos"},
	{"Agua de horchata", "30.00", "Bebidas"},
	{"Refresco", "28.00", "Bebidas"},
}

func main() {
	// CLI flags
	username := flag.String("username", "", "Admin username")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	withMenu := flag.Bool("menu", false, "Also seed a sample menu")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.L()

	// Fall back to environment variables, then defaults
	if *username == "" {
		*username = envOr("SEED_USERNAME", "admin")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		log.Warn("using default password 'password123', change it immediately in production")
	}
	if *name == "" {
		*name = envOr("SEED_NAME", "Administrador")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("unable to ping database", zap.Error(err))
	}
	log.Info("connected to database")

	// Seed in a transaction: admin and menu together or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("failed to begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	userID, err := seedAdmin(ctx, tx, *username, *password, *name)
	if err != nil {
		log.Fatal("failed to seed admin", zap.Error(err))
	}

	if *withMenu {
		n, err := seedMenu(ctx, tx)
		if err != nil {
			log.Fatal("failed to seed menu", zap.Error(err))
		}
		log.Info("menu seeded", zap.Int("created", n))
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal("failed to commit", zap.Error(err))
	}

	log.Info("seed completed", zap.String("admin_id", userID.String()))
}

// seedAdmin creates the admin user if it doesn't exist.
func seedAdmin(ctx context.Context, tx pgx.Tx, username, password, fullName string) (uuid.UUID, error) {
	log := logger.L()

	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1 LIMIT 1`, username).Scan(&existingID)
	if err == nil {
		log.Info("admin already exists, skipping", zap.String("username", username))
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	insertSQL := `
		INSERT INTO users (username, hashed_password, full_name, role)
		VALUES ($1, $2, $3, 'admin')
		RETURNING id
	`
	var newID uuid.UUID
	if err := tx.QueryRow(ctx, insertSQL, username, string(hashed), fullName).Scan(&newID); err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	log.Info("created admin user", zap.String("username", username), zap.String("id", newID.String()))
	return newID, nil
}

// seedMenu inserts the sample items whose names are not on the menu yet.
func seedMenu(ctx context.Context, tx pgx.Tx) (int, error) {
	created := 0
	for _, m := range sampleMenu {
		tag, err := tx.Exec(ctx, `
			INSERT INTO menu_items (name, price, category, available)
			SELECT $1, $2::numeric, $3, true
			WHERE NOT EXISTS (SELECT 1 FROM menu_items WHERE name = $1)
		`, m.name, m.price, m.category)
		if err != nil {
			return created, fmt.Errorf("insert menu item %q: %w", m.name, err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
