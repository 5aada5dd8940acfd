// Package ambulance acknowledges emergency transport requests. Dispatch is
// handled by an external radio operator; this service validates the request
// and leaves an audit trail.
package ambulance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinica/sistema/internal/domain/patient"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// AddressResolver is the slice of the patient service the dispatcher needs.
type AddressResolver interface {
	GetOwnedAddress(ctx context.Context, patientID, addressID int64) (*patient.Address, error)
}

// Request is an inbound ambulance call.
type Request struct {
	AddressID int64  `json:"address_id"`
	Note      string `json:"note"`
}

// Ack confirms the request was taken and names the address it will go to.
type Ack struct {
	Reference   string    `json:"reference"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	RequestedAt time.Time `json:"requested_at"`
}

type Service struct {
	addresses AddressResolver
	logger    zerolog.Logger
}

func NewService(addresses AddressResolver, logger zerolog.Logger) *Service {
	return &Service{
		addresses: addresses,
		logger:    logger.With().Str("component", "ambulance").Logger(),
	}
}

// RequestAmbulance validates that the address belongs to the calling patient
// and acknowledges the dispatch.
func (s *Service) RequestAmbulance(ctx context.Context, patientID int64, req Request) (*Ack, error) {
	if req.AddressID <= 0 {
		return nil, fmt.Errorf("%w: address id must be positive", ErrInvalidInput)
	}

	addr, err := s.addresses.GetOwnedAddress(ctx, patientID, req.AddressID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, req.AddressID)
		}
		return nil, err
	}

	ack := &Ack{
		Reference:   uuid.New().String(),
		Street:      addr.Street,
		City:        addr.City,
		RequestedAt: time.Now(),
	}

	s.logger.Info().
		Str("reference", ack.Reference).
		Int64("patient_id", patientID).
		Int64("address_id", addr.ID).
		Str("city", addr.City).
		Str("note", req.Note).
		Msg("ambulance requested")

	return ack, nil
}
