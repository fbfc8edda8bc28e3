package postgres

import (
	"context"
	"database/sql"
	"strings"

	"farm-livestock-registry/internal/domain/assignments"
)

type AssignmentsRepo struct {
	db *sql.DB
}

func NewAssignmentsRepo(db *sql.DB) *AssignmentsRepo {
	return &AssignmentsRepo{db: db}
}

const assignmentColumns = `
	id, pen_id, attendant_id, supervisor_id,
	is_active, notes, created_at, updated_at
`

func (r *AssignmentsRepo) Create(ctx context.Context, a assignments.PenAssignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pen_assignments (
			id, pen_id, attendant_id, supervisor_id,
			is_active, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.PenID,
		toNullString(a.AttendantID),
		toNullString(a.SupervisorID),
		a.IsActive,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AssignmentsRepo) Update(ctx context.Context, a assignments.PenAssignment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pen_assignments
		SET
			attendant_id = $2,
			supervisor_id = $3,
			is_active = $4,
			notes = $5,
			updated_at = $6
		WHERE id = $1
	`,
		a.ID,
		toNullString(a.AttendantID),
		toNullString(a.SupervisorID),
		a.IsActive,
		a.Notes,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return assignments.ErrNotFound
	}
	return nil
}

func (r *AssignmentsRepo) GetByID(ctx context.Context, id string) (assignments.PenAssignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return assignments.PenAssignment{}, assignments.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM pen_assignments
		WHERE id = $1
	`, id)

	return scanAssignment(row)
}

func (r *AssignmentsRepo) ListByPen(ctx context.Context, penID string) ([]assignments.PenAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM pen_assignments
		WHERE pen_id = $1
		ORDER BY created_at ASC
	`, penID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]assignments.PenAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AssignmentsRepo) HasActiveAssignment(ctx context.Context, penID, attendantID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pen_assignments
			WHERE pen_id = $1
			  AND attendant_id = $2
			  AND is_active = true
		)
	`, penID, attendantID).Scan(&ok)
	return ok, err
}

func scanAssignment(row rowScanner) (assignments.PenAssignment, error) {
	var a assignments.PenAssignment
	var attendantID, supervisorID sql.NullString

	if err := row.Scan(
		&a.ID,
		&a.PenID,
		&attendantID,
		&supervisorID,
		&a.IsActive,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return assignments.PenAssignment{}, assignments.ErrNotFound
		}
		return assignments.PenAssignment{}, err
	}

	if attendantID.Valid {
		v := attendantID.String
		a.AttendantID = &v
	}
	if supervisorID.Valid {
		v := supervisorID.String
		a.SupervisorID = &v
	}
	return a, nil
}
