package patient

import "context"

// Repository persists patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Count(ctx context.Context) (int, error)
}

// AddressRepository persists patient addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *Address) error
	GetByID(ctx context.Context, id int64) (*Address, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Address, error)
	Delete(ctx context.Context, id int64) error
}
