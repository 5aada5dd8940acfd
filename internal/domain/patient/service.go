package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	patients  Repository
	addresses AddressRepository
}

func NewService(patients Repository, addresses AddressRepository) *Service {
	return &Service{patients: patients, addresses: addresses}
}

// RegisterInput carries the fields of a self-service registration.
type RegisterInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

// Register creates a patient account. Email and national id must both be
// unused; the password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.NationalID = strings.TrimSpace(in.NationalID)

	if in.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if in.NationalID == "" {
		return nil, fmt.Errorf("%w: national id is required", ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	if _, err := s.patients.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := s.patients.GetByNationalID(ctx, in.NationalID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &Patient{
		FullName:     in.FullName,
		Email:        in.Email,
		NationalID:   in.NationalID,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate verifies an email and password pair and returns the patient.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Patient, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	p, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// GetByID returns a patient by id.
func (s *Service) GetByID(ctx context.Context, id int64) (*Patient, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: patient id must be positive", ErrInvalidInput)
	}
	return s.patients.GetByID(ctx, id)
}

// AddAddress stores a new address for the patient.
func (s *Service) AddAddress(ctx context.Context, patientID int64, a *Address) error {
	if strings.TrimSpace(a.Street) == "" {
		return fmt.Errorf("%w: street is required", ErrInvalidInput)
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return err
	}
	a.PatientID = patientID
	return s.addresses.Create(ctx, a)
}

// ListAddresses returns the addresses on file for a patient.
func (s *Service) ListAddresses(ctx context.Context, patientID int64) ([]*Address, error) {
	return s.addresses.ListByPatient(ctx, patientID)
}

// GetOwnedAddress returns an address only when it belongs to the patient.
func (s *Service) GetOwnedAddress(ctx context.Context, patientID, addressID int64) (*Address, error) {
	a, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, ErrNotFound
	}
	return a, nil
}
