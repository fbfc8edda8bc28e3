package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"farm-livestock-registry/internal/domain/animals"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// mapConflict traduce los aborts de concurrencia de Postgres al error
// transitorio del dominio para que el servicio reintente acotado:
// 40001 serialization_failure, 40P01 deadlock_detected.
// Un unique_violation (23505) sobre el tag con tag explícito del usuario es
// permanente (ErrDuplicateTag); sobre mortality es ErrAlreadyDeceased.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "40001", "40P01":
		return animals.ErrConflict
	case "23505":
		switch pgErr.ConstraintName {
		case "animals_tag_key":
			return animals.ErrDuplicateTag
		case "mortality_records_animal_id_key":
			return animals.ErrAlreadyDeceased
		}
		return animals.ErrConflict
	}
	return err
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
