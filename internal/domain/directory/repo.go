package directory

import "context"

// SpecialtyRepository persists medical specialties.
type SpecialtyRepository interface {
	Create(ctx context.Context, sp *Specialty) error
	GetByID(ctx context.Context, id int64) (*Specialty, error)
	GetByName(ctx context.Context, name string) (*Specialty, error)
	List(ctx context.Context) ([]*Specialty, error)
	Count(ctx context.Context) (int, error)
}

// DoctorRepository persists the doctor roster.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	ListBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	Count(ctx context.Context) (int, error)
}
