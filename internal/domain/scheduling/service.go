package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinica/sistema/internal/domain/directory"
	"github.com/clinica/sistema/internal/domain/patient"
	"github.com/clinica/sistema/internal/platform/db"
	"github.com/clinica/sistema/internal/platform/mail"
)

// PatientDirectory is the slice of the patient repository the booking flow needs.
type PatientDirectory interface {
	GetByID(ctx context.Context, id int64) (*patient.Patient, error)
}

// DoctorDirectory is the slice of the doctor roster the booking flow needs.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id int64) (*directory.Doctor, error)
}

type Service struct {
	slots         SlotRepository
	appointments  AppointmentRepository
	notifications NotificationRepository
	patients      PatientDirectory
	doctors       DoctorDirectory
	tx            db.TxRunner
	mailer        mail.Sender
	logger        zerolog.Logger
}

func NewService(
	slots SlotRepository,
	appointments AppointmentRepository,
	notifications NotificationRepository,
	patients PatientDirectory,
	doctors DoctorDirectory,
	tx db.TxRunner,
	mailer mail.Sender,
	logger zerolog.Logger,
) *Service {
	return &Service{
		slots:         slots,
		appointments:  appointments,
		notifications: notifications,
		patients:      patients,
		doctors:       doctors,
		tx:            tx,
		mailer:        mailer,
		logger:        logger.With().Str("component", "scheduling").Logger(),
	}
}

// CreateAppointmentInput carries a booking request.
type CreateAppointmentInput struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// CreateAppointment books the slot matching the requested doctor, date and
// time. The slot check and flip happen inside one transaction so two patients
// cannot book the same opening. The confirmation email is sent after commit
// and never fails the booking.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*Appointment, error) {
	if strings.TrimSpace(in.Date) == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Time) == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if in.PatientID <= 0 {
		return nil, fmt.Errorf("%w: patient id must be positive", ErrInvalidInput)
	}
	if in.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor id must be positive", ErrInvalidInput)
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be formatted %s", ErrInvalidInput, DateLayout)
	}
	if _, err := time.Parse(TimeLayout, strings.TrimSpace(in.Time)); err != nil {
		return nil, fmt.Errorf("%w: time must be formatted %s", ErrInvalidInput, TimeLayout)
	}
	timeOfDay := strings.TrimSpace(in.Time)

	pat, err := s.patients.GetByID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, fmt.Errorf("%w: patient %d", ErrNotFound, in.PatientID)
		}
		return nil, err
	}
	doc, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor %d", ErrNotFound, in.DoctorID)
		}
		return nil, err
	}

	appt := &Appointment{
		PatientID: pat.ID,
		DoctorID:  doc.ID,
		Date:      date,
		Time:      timeOfDay,
		Status:    StatusPending,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetForBooking(ctx, doc.ID, date, timeOfDay)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: no slot for doctor %d on %s at %s",
					ErrNotFound, doc.ID, in.Date, timeOfDay)
			}
			return err
		}
		if !slot.Available {
			return ErrSlotTaken
		}
		if err := s.slots.SetAvailable(ctx, slot.ID, false); err != nil {
			return err
		}
		appt.SlotID = slot.ID
		return s.appointments.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	appt.DoctorName = doc.FullName
	appt.SpecialtyName = doc.SpecialtyName

	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Int64("patient_id", pat.ID).
		Int64("doctor_id", doc.ID).
		Str("date", in.Date).
		Str("time", timeOfDay).
		Msg("appointment booked")

	s.sendConfirmation(ctx, appt, pat, doc)
	return appt, nil
}

// sendConfirmation records and delivers the booking email. Every failure here
// is logged and swallowed; the appointment is already committed.
func (s *Service) sendConfirmation(ctx context.Context, appt *Appointment, pat *patient.Patient, doc *directory.Doctor) {
	n := &Notification{
		AppointmentID: appt.ID,
		Recipient:     pat.Email,
		Subject:       ConfirmationSubject,
		Body:          confirmationBody(pat.FullName, doc.FullName, doc.SpecialtyName, appt.Date, appt.Time),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Int64("appointment_id", appt.ID).
			Msg("failed to record notification")
		return
	}
	if err := s.appointments.SetNotification(ctx, appt.ID, n.ID); err != nil {
		s.logger.Error().Err(err).
			Int64("appointment_id", appt.ID).
			Int64("notification_id", n.ID).
			Msg("failed to link notification to appointment")
	}
	appt.NotificationID = &n.ID

	if err := s.mailer.Send(mail.Message{To: n.Recipient, Subject: n.Subject, Body: n.Body}); err != nil {
		s.logger.Error().Err(err).
			Int64("appointment_id", appt.ID).
			Str("recipient", n.Recipient).
			Msg("failed to deliver confirmation email")
		return
	}
	if err := s.notifications.MarkDelivered(ctx, n.ID); err != nil {
		s.logger.Error().Err(err).
			Int64("notification_id", n.ID).
			Msg("failed to mark notification delivered")
	}
	n.Delivered = true
}

// CancelAppointment flips an appointment to cancelled and frees its slot. The
// caller must own the appointment. A slot that has since disappeared is
// logged, not fatal; the cancellation still stands.
func (s *Service) CancelAppointment(ctx context.Context, patientID, appointmentID int64) error {
	if appointmentID <= 0 {
		return fmt.Errorf("%w: appointment id must be positive", ErrInvalidInput)
	}

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if patientID > 0 && appt.PatientID != patientID {
		return fmt.Errorf("%w: appointment %d", ErrNotFound, appointmentID)
	}
	if appt.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.UpdateStatus(ctx, appt.ID, StatusCancelled); err != nil {
			return err
		}
		if err := s.slots.SetAvailable(ctx, appt.SlotID, true); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn().
					Int64("appointment_id", appt.ID).
					Int64("slot_id", appt.SlotID).
					Msg("slot missing while cancelling, leaving it unreleased")
				return nil
			}
			return err
		}
		return nil
	})
}

// GetAppointment returns one appointment, scoped to its owner.
func (s *Service) GetAppointment(ctx context.Context, patientID, appointmentID int64) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if patientID > 0 && appt.PatientID != patientID {
		return nil, fmt.Errorf("%w: appointment %d", ErrNotFound, appointmentID)
	}
	return appt, nil
}

// ListAppointments returns every appointment in the system, newest first.
func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

// PendingAppointments returns a patient's upcoming bookings.
func (s *Service) PendingAppointments(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	if err := s.resolvePatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByPatientAndStatus(ctx, patientID, StatusPending, limit, offset)
}

// AppointmentHistory returns a patient's past bookings: everything no longer
// pending. Pending and history partition the patient's appointments.
func (s *Service) AppointmentHistory(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	if err := s.resolvePatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByPatientAndStatusNot(ctx, patientID, StatusPending, limit, offset)
}

func (s *Service) resolvePatient(ctx context.Context, patientID int64) error {
	if patientID <= 0 {
		return fmt.Errorf("%w: patient id must be positive", ErrInvalidInput)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return fmt.Errorf("%w: patient %d", ErrNotFound, patientID)
		}
		return err
	}
	return nil
}

// AvailableSlots returns a doctor's open slots from the given date onward.
func (s *Service) AvailableSlots(ctx context.Context, doctorID int64, from time.Time) ([]*Slot, error) {
	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor id must be positive", ErrInvalidInput)
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor %d", ErrNotFound, doctorID)
		}
		return nil, err
	}
	return s.slots.ListAvailableByDoctor(ctx, doctorID, from)
}
