package directory

import (
	"context"
	"fmt"
)

type Service struct {
	specialties SpecialtyRepository
	doctors     DoctorRepository
}

func NewService(specialties SpecialtyRepository, doctors DoctorRepository) *Service {
	return &Service{specialties: specialties, doctors: doctors}
}

// ListSpecialties returns every specialty offered by the clinic, ordered by name.
func (s *Service) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	return s.specialties.List(ctx)
}

// GetSpecialty returns a single specialty by id.
func (s *Service) GetSpecialty(ctx context.Context, id int64) (*Specialty, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: specialty id must be positive", ErrInvalidInput)
	}
	return s.specialties.GetByID(ctx, id)
}

// DoctorsBySpecialty returns the active doctors attached to a specialty.
// The specialty must exist; an unknown id is reported rather than returning
// an empty roster.
func (s *Service) DoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	if specialtyID <= 0 {
		return nil, fmt.Errorf("%w: specialty id must be positive", ErrInvalidInput)
	}
	if _, err := s.specialties.GetByID(ctx, specialtyID); err != nil {
		return nil, err
	}
	return s.doctors.ListBySpecialty(ctx, specialtyID)
}

// GetDoctor returns a single doctor by id.
func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: doctor id must be positive", ErrInvalidInput)
	}
	return s.doctors.GetByID(ctx, id)
}

// ListDoctors returns the full roster with pagination.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}
