package scheduling

import (
	"context"
	"time"
)

// SlotRepository persists doctor agenda openings.
type SlotRepository interface {
	Create(ctx context.Context, sl *Slot) error
	GetByID(ctx context.Context, id int64) (*Slot, error)
	// GetForBooking loads the slot for a doctor at the given date and time,
	// locking the row until the surrounding transaction finishes.
	GetForBooking(ctx context.Context, doctorID int64, date time.Time, timeOfDay string) (*Slot, error)
	SetAvailable(ctx context.Context, id int64, available bool) error
	ListAvailableByDoctor(ctx context.Context, doctorID int64, from time.Time) ([]*Slot, error)
	Count(ctx context.Context) (int, error)
}

// AppointmentRepository persists booked appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetNotification(ctx context.Context, id, notificationID int64) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error)
	ListByPatientAndStatus(ctx context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error)
	ListByPatientAndStatusNot(ctx context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error)
}

// NotificationRepository persists the confirmation email trail.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	MarkDelivered(ctx context.Context, id int64) error
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*Notification, error)
}
