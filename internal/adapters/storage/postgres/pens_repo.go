package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-registry/internal/domain/animals"
	"farm-livestock-registry/internal/domain/pens"
)

type PensRepo struct {
	db *sql.DB
}

func NewPensRepo(db *sql.DB) *PensRepo {
	return &PensRepo{db: db}
}

func (r *PensRepo) Create(ctx context.Context, p pens.Pen) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pens (
			id, name, capacity, species, location, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.Name,
		p.Capacity,
		string(p.Species),
		p.Location,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PensRepo) Update(ctx context.Context, p pens.Pen) error {
	// species no se actualiza: queda fija desde la creación
	res, err := r.db.ExecContext(ctx, `
		UPDATE pens
		SET
			name = $2,
			capacity = $3,
			location = $4,
			notes = $5,
			updated_at = $6
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Capacity,
		p.Location,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pens.ErrNotFound
	}
	return nil
}

func (r *PensRepo) GetByID(ctx context.Context, id string) (pens.Pen, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pens.Pen{}, pens.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, capacity, species, location, notes, created_at, updated_at
		FROM pens
		WHERE id = $1
	`, id)

	return scanPen(row)
}

func (r *PensRepo) List(ctx context.Context) ([]pens.Pen, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, capacity, species, location, notes, created_at, updated_at
		FROM pens
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pens.Pen, 0)
	for rows.Next() {
		p, err := scanPen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPen(row rowScanner) (pens.Pen, error) {
	var p pens.Pen
	var species string

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Capacity,
		&species,
		&p.Location,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return pens.Pen{}, pens.ErrNotFound
		}
		return pens.Pen{}, err
	}

	p.Species = animals.Species(species)
	return p, nil
}
