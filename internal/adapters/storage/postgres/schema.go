package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vet-clinic/internal/config"
)

// Migrate crea las tablas si no existen. La regla de borrado de dueños se
// expresa como foreign key (CASCADE o SET NULL); pets -> appointments siempre
// es CASCADE.
func Migrate(ctx context.Context, db *sql.DB, rule config.OwnerDeleteRule) error {
	onOwnerDelete := "CASCADE"
	if rule == config.OwnerDeleteNullify {
		onOwnerDelete = "SET NULL"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS owners (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			phone       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NULL,
			name        TEXT NOT NULL,
			species     TEXT NOT NULL CHECK (species IN ('dog','cat','rabbit')),
			breed       TEXT NOT NULL DEFAULT '',
			birth_date  DATE NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		// La FK se recrea para que un cambio de OWNER_DELETE_RULE aplique.
		`ALTER TABLE pets DROP CONSTRAINT IF EXISTS pets_owner_fk`,
		fmt.Sprintf(`ALTER TABLE pets ADD CONSTRAINT pets_owner_fk
			FOREIGN KEY (owner_id) REFERENCES owners(id) ON DELETE %s`, onOwnerDelete),
		`CREATE TABLE IF NOT EXISTS appointments (
			id            TEXT PRIMARY KEY,
			pet_id        TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			scheduled_at  TIMESTAMPTZ NOT NULL,
			service       TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'pending',
			note          TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS appointments_scheduled_at_idx ON appointments (scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS appointments_pet_id_idx ON appointments (pet_id)`,
		`CREATE INDEX IF NOT EXISTS pets_owner_id_idx ON pets (owner_id)`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}
