// Package sandbox seeds demo data so a fresh installation can be exercised
// immediately: the specialty catalog, a doctor roster, a demo patient and a
// rolling window of bookable slots.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinica/sistema/internal/domain/directory"
	"github.com/clinica/sistema/internal/domain/patient"
	"github.com/clinica/sistema/internal/domain/scheduling"
)

// slotThreshold stops slot seeding once the agenda already has this many
// rows, so repeated runs do not flood the calendar.
const slotThreshold = 100

// SlotTimes are the daily openings created for every doctor.
var SlotTimes = []string{"09:00", "11:00", "15:00"}

// SpecialtyNames is the clinic's fixed specialty catalog.
var SpecialtyNames = []string{
	"Cardiología",
	"Dermatología",
	"Endocrinología",
	"Gastroenterología",
	"Ginecología",
	"Medicina General",
	"Neumología",
	"Neurología",
	"Odontología",
	"Oftalmología",
	"Oncología",
	"Pediatría",
	"Psiquiatría",
	"Traumatología",
	"Urología",
}

// doctorRoster pairs demo doctors with their specialty.
var doctorRoster = []struct {
	name      string
	email     string
	specialty string
}{
	{"Dr. Andrés Vega", "avega@clinica.example.com", "Cardiología"},
	{"Dra. Lucía Ríos", "lrios@clinica.example.com", "Dermatología"},
	{"Dr. Mateo Paredes", "mparedes@clinica.example.com", "Medicina General"},
	{"Dra. Carla Mena", "cmena@clinica.example.com", "Medicina General"},
	{"Dr. Jorge Salas", "jsalas@clinica.example.com", "Pediatría"},
	{"Dra. Elena Bravo", "ebravo@clinica.example.com", "Ginecología"},
	{"Dr. Pablo Cueva", "pcueva@clinica.example.com", "Traumatología"},
	{"Dra. Inés Loor", "iloor@clinica.example.com", "Oftalmología"},
}

// demo patient credentials, useful for manual testing against a fresh install
const (
	demoPatientEmail    = "demo@clinica.example.com"
	demoPatientPassword = "demo-password"
)

type Seeder struct {
	specialties directory.SpecialtyRepository
	doctors     directory.DoctorRepository
	patients    patient.Repository
	slots       scheduling.SlotRepository
	days        int
	logger      zerolog.Logger
}

func NewSeeder(
	specialties directory.SpecialtyRepository,
	doctors directory.DoctorRepository,
	patients patient.Repository,
	slots scheduling.SlotRepository,
	days int,
	logger zerolog.Logger,
) *Seeder {
	if days <= 0 {
		days = 3
	}
	return &Seeder{
		specialties: specialties,
		doctors:     doctors,
		patients:    patients,
		slots:       slots,
		days:        days,
		logger:      logger.With().Str("component", "seeder").Logger(),
	}
}

// Run seeds everything. It is idempotent: existing specialties, doctors and
// patients are left alone, and slot creation is skipped entirely once the
// agenda holds slotThreshold rows.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedSpecialties(ctx); err != nil {
		return fmt.Errorf("seeding specialties: %w", err)
	}
	if err := s.seedDoctors(ctx); err != nil {
		return fmt.Errorf("seeding doctors: %w", err)
	}
	if err := s.seedDemoPatient(ctx); err != nil {
		return fmt.Errorf("seeding demo patient: %w", err)
	}
	if err := s.seedSlots(ctx); err != nil {
		return fmt.Errorf("seeding slots: %w", err)
	}
	return nil
}

func (s *Seeder) seedSpecialties(ctx context.Context) error {
	created := 0
	for _, name := range SpecialtyNames {
		if _, err := s.specialties.GetByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, directory.ErrNotFound) {
			return err
		}
		if err := s.specialties.Create(ctx, &directory.Specialty{Name: name}); err != nil {
			return err
		}
		created++
	}
	s.logger.Info().Int("created", created).Msg("specialties seeded")
	return nil
}

func (s *Seeder) seedDoctors(ctx context.Context) error {
	count, err := s.doctors.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info().Int("existing", count).Msg("doctor roster already present, skipping")
		return nil
	}

	for _, d := range doctorRoster {
		sp, err := s.specialties.GetByName(ctx, d.specialty)
		if err != nil {
			return fmt.Errorf("specialty %q for doctor %q: %w", d.specialty, d.name, err)
		}
		doc := &directory.Doctor{
			FullName:    d.name,
			Email:       d.email,
			SpecialtyID: sp.ID,
			Active:      true,
		}
		if err := s.doctors.Create(ctx, doc); err != nil {
			return err
		}
	}
	s.logger.Info().Int("created", len(doctorRoster)).Msg("doctor roster seeded")
	return nil
}

func (s *Seeder) seedDemoPatient(ctx context.Context) error {
	if _, err := s.patients.GetByEmail(ctx, demoPatientEmail); err == nil {
		return nil
	} else if !errors.Is(err, patient.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPatientPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p := &patient.Patient{
		FullName:     "Paciente Demo",
		Email:        demoPatientEmail,
		NationalID:   "9999999999",
		Phone:        "0990000000",
		PasswordHash: string(hash),
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Str("email", demoPatientEmail).Msg("demo patient seeded")
	return nil
}

func (s *Seeder) seedSlots(ctx context.Context) error {
	count, err := s.slots.Count(ctx)
	if err != nil {
		return err
	}
	if count >= slotThreshold {
		s.logger.Info().Int("existing", count).Msg("agenda already populated, skipping slots")
		return nil
	}

	doctors, _, err := s.doctors.List(ctx, 1000, 0)
	if err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	created := 0
	for day := 0; day < s.days; day++ {
		date := today.AddDate(0, 0, day)
		for _, doc := range doctors {
			for _, tm := range SlotTimes {
				sl := &scheduling.Slot{
					DoctorID:  doc.ID,
					Date:      date,
					Time:      tm,
					Available: true,
				}
				if err := s.slots.Create(ctx, sl); err != nil {
					return err
				}
				created++
			}
		}
	}
	s.logger.Info().Int("created", created).Int("days", s.days).Msg("slots seeded")
	return nil
}
