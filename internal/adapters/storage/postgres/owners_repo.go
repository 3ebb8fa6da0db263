package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vet-clinic/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (id, name, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, o.ID, o.Name, o.Phone, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET name = $2, phone = $3, updated_at = $4
		WHERE id = $1
	`, o.ID, o.Name, o.Phone, o.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return owners.ErrNotFound
	}
	return nil
}

// Delete: las mascotas las resuelve la FK (CASCADE o SET NULL).
func (r *OwnersRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, created_at, updated_at
		FROM owners
		WHERE id = $1
	`, strings.TrimSpace(id))

	var o owners.Owner
	if err := row.Scan(&o.ID, &o.Name, &o.Phone, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return owners.Owner{}, owners.ErrNotFound
		}
		return owners.Owner{}, err
	}
	return o, nil
}

func (r *OwnersRepo) List(ctx context.Context, filter owners.ListFilter) ([]owners.Owner, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, name, phone, created_at, updated_at
		FROM owners
		WHERE 1=1
	`)
	args := []any{}
	argN := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(" AND (name ILIKE $%d ESCAPE '\\' OR phone ILIKE $%d ESCAPE '\\')", argN, argN))
		args = append(args, containsPattern(q))
		argN++
	}

	sb.WriteString(" ORDER BY lower(name) ASC, created_at ASC")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		var o owners.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
