// Command migrate upgrades a legacy postgres database in place: free text
// steps become JSON strings, empty steps become an empty list, and the steps
// column is retyped to json. Optionally it also hands recipes owned by the
// old placeholder "system" account back to the system.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
)

const (
	systemUsername = "system"
	systemEmail    = "system@example.com"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	detach := flag.Bool("detach-system-user", false, "Make recipes of the placeholder system account system-owned and remove the account")
	flag.Parse()

	logging.Init(logging.Config{Format: "console"})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration could not be loaded")
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to start transaction")
	}
	defer tx.Rollback()

	converted, err := migrateSteps(ctx, tx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate steps")
	}
	logging.Info().Int("recipes", converted).Msg("Steps converted")

	if *detach {
		detached, err := detachSystemUser(ctx, tx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to detach system user")
		}
		logging.Info().Int64("recipes", detached).Msg("Recipes made system-owned")
	}

	if *dryRun {
		logging.Info().Msg("Dry run, rolling back")
		return
	}
	if err := tx.Commit(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to commit migration")
	}
	logging.Info().Msg("Migration completed successfully")
}

// migrateSteps rewrites every steps value that is not already JSON and then
// retypes a legacy text column.
func migrateSteps(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, steps::text FROM recipes")
	if err != nil {
		return 0, fmt.Errorf("failed to read recipes: %w", err)
	}

	updates := map[int64]string{}
	for rows.Next() {
		var (
			id  int64
			raw sql.NullString
		)
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan recipe: %w", err)
		}
		var value *string
		if raw.Valid {
			value = &raw.String
		}
		if normalized, changed := normalizeSteps(value); changed {
			updates[id] = normalized
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for id, steps := range updates {
		if _, err := tx.ExecContext(ctx, "UPDATE recipes SET steps = $1 WHERE id = $2", steps, id); err != nil {
			return 0, fmt.Errorf("failed to update recipe %d: %w", id, err)
		}
		logging.Debug().Int64("recipe_id", id).Msg("Converted steps")
	}

	var dataType string
	err = tx.QueryRowContext(ctx,
		"SELECT data_type FROM information_schema.columns WHERE table_name = 'recipes' AND column_name = 'steps'",
	).Scan(&dataType)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect steps column: %w", err)
	}
	if dataType != "json" && dataType != "jsonb" {
		logging.Info().Str("from", dataType).Msg("Retyping steps column to json")
		if _, err := tx.ExecContext(ctx, "ALTER TABLE recipes ALTER COLUMN steps TYPE json USING steps::json"); err != nil {
			return 0, fmt.Errorf("failed to retype steps column: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "ALTER TABLE recipes ALTER COLUMN steps SET NOT NULL"); err != nil {
			return 0, fmt.Errorf("failed to require steps: %w", err)
		}
	}

	return len(updates), nil
}

// normalizeSteps maps a legacy steps value onto its JSON form. Values that
// are already a JSON string or array are left alone.
func normalizeSteps(raw *string) (string, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return "[]", true
	}
	trimmed := strings.TrimSpace(*raw)
	if json.Valid([]byte(trimmed)) && (trimmed[0] == '"' || trimmed[0] == '[') {
		return *raw, false
	}
	encoded, _ := json.Marshal(*raw)
	return string(encoded), true
}

// detachSystemUser nulls the author of recipes owned by the placeholder
// account the old importer created, then removes that account.
func detachSystemUser(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE recipes SET author_id = NULL WHERE author_id IN (SELECT id FROM users WHERE username = $1 AND email = $2)",
		systemUsername, systemEmail,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to detach recipes: %w", err)
	}
	detached, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE username = $1 AND email = $2", systemUsername, systemEmail); err != nil {
		return 0, fmt.Errorf("failed to remove system user: %w", err)
	}
	return detached, nil
}
