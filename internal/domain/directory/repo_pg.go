package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/sistema/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository { return &specialtyRepoPG{pool: pool} }

func (r *specialtyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *specialtyRepoPG) Create(ctx context.Context, sp *Specialty) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO specialties (name) VALUES ($1)
		RETURNING id, created_at`,
		sp.Name).Scan(&sp.ID, &sp.CreatedAt)
}

func (r *specialtyRepoPG) GetByID(ctx context.Context, id int64) (*Specialty, error) {
	var sp Specialty
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, created_at FROM specialties WHERE id = $1`, id).
		Scan(&sp.ID, &sp.Name, &sp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *specialtyRepoPG) GetByName(ctx context.Context, name string) (*Specialty, error) {
	var sp Specialty
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, created_at FROM specialties WHERE name = $1`, name).
		Scan(&sp.ID, &sp.Name, &sp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]*Specialty, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, created_at FROM specialties ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Specialty
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &sp)
	}
	return items, rows.Err()
}

func (r *specialtyRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM specialties`).Scan(&n)
	return n, err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `d.id, d.full_name, d.email, d.specialty_id, s.name, d.active, d.created_at, d.updated_at`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FullName, &d.Email, &d.SpecialtyID, &d.SpecialtyName,
		&d.Active, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (full_name, email, specialty_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		d.FullName, d.Email, d.SpecialtyID, d.Active).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := r.scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT `+doctorCols+`
		FROM doctors d JOIN specialties s ON s.id = d.specialty_id
		WHERE d.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *doctorRepoPG) ListBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+doctorCols+`
		FROM doctors d JOIN specialties s ON s.id = d.specialty_id
		WHERE d.specialty_id = $1 AND d.active
		ORDER BY d.full_name ASC`, specialtyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+doctorCols+`
		FROM doctors d JOIN specialties s ON s.id = d.specialty_id
		ORDER BY d.full_name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}
