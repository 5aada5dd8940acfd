package patient

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

// =========== Patient Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, full_name, email, national_id, phone, password_hash, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.NationalID, &p.Phone,
		&p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (full_name, email, national_id, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.FullName, p.Email, p.NationalID, p.Phone, p.PasswordHash).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE email = $1`, email))
}

func (r *repoPG) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE national_id = $1`, nationalID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name=$2, phone=$3, password_hash=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Phone, p.PasswordHash)
	return err
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

// =========== Address Repository ===========

type addressRepoPG struct{ pool *pgxpool.Pool }

func NewAddressRepoPG(pool *pgxpool.Pool) AddressRepository { return &addressRepoPG{pool: pool} }

func (r *addressRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *addressRepoPG) Create(ctx context.Context, a *Address) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO addresses (patient_id, street, city, reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		a.PatientID, a.Street, a.City, a.Reference).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *addressRepoPG) GetByID(ctx context.Context, id int64) (*Address, error) {
	var a Address
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, street, city, reference, created_at
		FROM addresses WHERE id = $1`, id).
		Scan(&a.ID, &a.PatientID, &a.Street, &a.City, &a.Reference, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Address, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, street, city, reference, created_at
		FROM addresses WHERE patient_id = $1 ORDER BY created_at ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Street, &a.City, &a.Reference, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *addressRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	return err
}
