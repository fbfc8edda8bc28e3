package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"farm-livestock-registry/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, tag, species, gender,
	date_of_birth, dam_id, sire_id, pen_id,
	health_status, status, notes,
	created_at, updated_at
`

// Admit hace la admisión completa en una transacción: lock pesimista de la
// fila del corral (FOR UPDATE), re-chequeo de especie y capacidad bajo ese
// lock, asignación de tag por secuencia y el INSERT. Dos admisiones
// concurrentes al mismo corral se serializan en el lock; corrales distintos
// no contienden.
func (r *AnimalsRepo) Admit(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Animal{}, mapConflict(err)
	}
	defer func() { _ = tx.Rollback() }()

	if a.PenID != nil {
		if err := checkPenTx(ctx, tx, *a.PenID, a.Species); err != nil {
			return animals.Animal{}, err
		}
	}

	if a.Tag == "" {
		a.Tag, err = nextTagTx(ctx, tx, a.Species)
		if err != nil {
			return animals.Animal{}, mapConflict(err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO animals (
			id, tag, species, gender,
			date_of_birth, dam_id, sire_id, pen_id,
			health_status, status, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		a.ID,
		a.Tag,
		string(a.Species),
		string(a.Gender),
		toNullTime(a.DateOfBirth),
		toNullString(a.DamID),
		toNullString(a.SireID),
		toNullString(a.PenID),
		string(a.HealthStatus),
		string(a.Status),
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return animals.Animal{}, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return animals.Animal{}, mapConflict(err)
	}
	return a, nil
}

func (r *AnimalsRepo) Transfer(ctx context.Context, animalID, penID string, at time.Time) (animals.Animal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Animal{}, mapConflict(err)
	}
	defer func() { _ = tx.Rollback() }()

	// Orden de locks fijo (animal -> corral) para no deadlockear entre
	// transfers concurrentes.
	row := tx.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
		FOR UPDATE
	`, animalID)

	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, animals.ErrAnimalNotFound
		}
		return animals.Animal{}, mapConflict(err)
	}
	if a.Status == animals.StatusDeleted {
		return animals.Animal{}, animals.ErrAnimalNotFound
	}
	if a.Status != animals.StatusActive {
		return animals.Animal{}, animals.ErrAnimalNotActive
	}

	// Mismo corral: identidad, sin tocar nada.
	if a.PenID != nil && *a.PenID == penID {
		if err := tx.Commit(); err != nil {
			return animals.Animal{}, mapConflict(err)
		}
		return a, nil
	}

	if err := checkPenTx(ctx, tx, penID, a.Species); err != nil {
		return animals.Animal{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE animals SET pen_id = $2, updated_at = $3 WHERE id = $1
	`, animalID, penID, at); err != nil {
		return animals.Animal{}, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return animals.Animal{}, mapConflict(err)
	}

	a.PenID = &penID
	a.UpdatedAt = at
	return a, nil
}

// checkPenTx toma el lock de la fila del corral y valida especie y
// capacidad. El lock se sostiene hasta el commit del caller: el conteo no
// puede quedar viejo entre el chequeo y la escritura.
func checkPenTx(ctx context.Context, tx *sql.Tx, penID string, species animals.Species) error {
	var penSpecies string
	var capacity int

	err := tx.QueryRowContext(ctx, `
		SELECT species, capacity FROM pens WHERE id = $1 FOR UPDATE
	`, penID).Scan(&penSpecies, &capacity)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.ErrPenNotFound
		}
		return mapConflict(err)
	}

	if animals.Species(penSpecies) != species {
		return animals.ErrSpeciesMismatch
	}

	var occupied int
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM animals WHERE pen_id = $1 AND status = 'active'
	`, penID).Scan(&occupied)
	if err != nil {
		return mapConflict(err)
	}
	if occupied >= capacity {
		return animals.ErrCapacityExceeded
	}
	return nil
}

// nextTagTx avanza la secuencia de la especie con un upsert atómico. El
// lock de la fila de tag_sequences dura hasta el commit, así dos creaciones
// concurrentes sin tag explícito nunca reciben el mismo número.
func nextTagTx(ctx context.Context, tx *sql.Tx, species animals.Species) (string, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tag_sequences (species, next_value)
		VALUES ($1, 1)
		ON CONFLICT (species)
		DO UPDATE SET next_value = tag_sequences.next_value + 1
		RETURNING next_value
	`, string(species)).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", species.TagPrefix(), n), nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrAnimalNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)

	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, animals.ErrAnimalNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			gender = $2,
			date_of_birth = $3,
			pen_id = $4,
			health_status = $5,
			status = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1
	`,
		a.ID,
		string(a.Gender),
		toNullTime(a.DateOfBirth),
		toNullString(a.PenID),
		string(a.HealthStatus),
		string(a.Status),
		a.Notes,
		a.UpdatedAt,
	)
	if err != nil {
		return mapConflict(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrAnimalNotFound
	}
	return nil
}

// MarkDeceased: el cambio de estado y el MortalityRecord commitean juntos
// o se deshacen juntos. El UPDATE condicionado a status='active' hace la
// idempotencia: la segunda invocación no matchea ninguna fila.
func (r *AnimalsRepo) MarkDeceased(ctx context.Context, animalID string, rec animals.MortalityRecord, at time.Time) (animals.Animal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Animal{}, mapConflict(err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		UPDATE animals
		SET status = 'deceased', health_status = 'deceased', updated_at = $2
		WHERE id = $1 AND status = 'active'
		RETURNING `+animalColumns+`
	`, animalID, at)

	a, err := scanAnimal(row)
	if err != nil {
		if err != sql.ErrNoRows {
			return animals.Animal{}, mapConflict(err)
		}

		// No matcheó: distinguir ya-fallecido de inexistente/borrado.
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM animals WHERE id = $1`, animalID,
		).Scan(&status)
		if err != nil || animals.Status(status) == animals.StatusDeleted {
			return animals.Animal{}, animals.ErrAnimalNotFound
		}
		return animals.Animal{}, animals.ErrAlreadyDeceased
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO mortality_records (
			id, animal_id, cause_of_death, date_of_death, reported_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		rec.ID,
		rec.AnimalID,
		rec.CauseOfDeath,
		rec.DateOfDeath,
		rec.ReportedBy,
		rec.CreatedAt,
	); err != nil {
		return animals.Animal{}, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return animals.Animal{}, mapConflict(err)
	}
	return a, nil
}

func (r *AnimalsRepo) MortalityByAnimal(ctx context.Context, animalID string) (animals.MortalityRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, animal_id, cause_of_death, date_of_death, reported_by, created_at
		FROM mortality_records
		WHERE animal_id = $1
	`, animalID)

	var rec animals.MortalityRecord
	if err := row.Scan(
		&rec.ID,
		&rec.AnimalID,
		&rec.CauseOfDeath,
		&rec.DateOfDeath,
		&rec.ReportedBy,
		&rec.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return animals.MortalityRecord{}, animals.ErrAnimalNotFound
		}
		return animals.MortalityRecord{}, err
	}
	return rec, nil
}

func (r *AnimalsRepo) ListByParent(ctx context.Context, parentID string, role animals.ParentRole) ([]animals.Animal, error) {
	col := "dam_id"
	if role == animals.RoleSire {
		col = "sire_id"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE `+col+` = $1 AND status <> 'deleted'
		ORDER BY date_of_birth DESC NULLS LAST
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) CountActiveInPen(ctx context.Context, penID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM animals WHERE pen_id = $1 AND status = 'active'
	`, penID).Scan(&n)
	return n, err
}

// Search arma el WHERE una sola vez y lo usa para el count y la página;
// total y slice no pueden divergir.
func (r *AnimalsRepo) Search(ctx context.Context, f animals.SearchFilter, offset, limit int) ([]animals.Animal, int, error) {
	where, args := buildSearchWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM animals `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM animals
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, animalColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func buildSearchWhere(f animals.SearchFilter) (string, []any) {
	conds := []string{"status <> 'deleted'"}
	args := make([]any, 0, 4)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Species != nil {
		add("species = $%d", string(*f.Species))
	}
	if f.HealthStatus != nil {
		add("health_status = $%d", string(*f.HealthStatus))
	}
	if f.PenID != nil {
		add("pen_id = $%d", *f.PenID)
	}
	if f.FreeText != "" {
		args = append(args, "%"+f.FreeText+"%")
		// el mismo placeholder sirve para ambos lados del OR
		conds = append(conds, fmt.Sprintf("(tag ILIKE $%d OR notes ILIKE $%d)", len(args), len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var (
		species, gender, health, status string
		dob                             sql.NullTime
		damID, sireID, penID            sql.NullString
	)

	if err := row.Scan(
		&a.ID,
		&a.Tag,
		&species,
		&gender,
		&dob,
		&damID,
		&sireID,
		&penID,
		&health,
		&status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Species = animals.Species(species)
	a.Gender = animals.Gender(gender)
	a.HealthStatus = animals.HealthStatus(health)
	a.Status = animals.Status(status)

	if dob.Valid {
		t := dob.Time
		a.DateOfBirth = &t
	}
	if damID.Valid {
		v := damID.String
		a.DamID = &v
	}
	if sireID.Valid {
		v := sireID.String
		a.SireID = &v
	}
	if penID.Valid {
		v := penID.String
		a.PenID = &v
	}

	return a, nil
}
