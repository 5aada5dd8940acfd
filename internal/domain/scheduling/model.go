package scheduling

import "time"

// Appointment statuses. The values are stored verbatim, matching what the
// front desk staff see on their reports.
const (
	StatusPending   = "Pendiente"
	StatusCancelled = "Cancelada"
)

// DateLayout is the wire format for appointment dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for slot times of day.
const TimeLayout = "15:04"

// Slot maps to the slots table. A slot is one bookable opening in a doctor's
// agenda; (doctor_id, date, time) is unique.
type Slot struct {
	ID        int64     `db:"id" json:"id"`
	DoctorID  int64     `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment maps to the appointments table. DoctorName and SpecialtyName
// are populated on reads that join against the doctor roster.
type Appointment struct {
	ID             int64     `db:"id" json:"id"`
	PatientID      int64     `db:"patient_id" json:"patient_id"`
	DoctorID       int64     `db:"doctor_id" json:"doctor_id"`
	SlotID         int64     `db:"slot_id" json:"slot_id"`
	Date           time.Time `db:"date" json:"date"`
	Time           string    `db:"time" json:"time"`
	Status         string    `db:"status" json:"status"`
	NotificationID *int64    `db:"notification_id" json:"notification_id,omitempty"`
	DoctorName     string    `db:"doctor_name" json:"doctor_name,omitempty"`
	SpecialtyName  string    `db:"specialty_name" json:"specialty_name,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Notification maps to the notifications table. One row is written per
// confirmation email, whether or not delivery succeeded.
type Notification struct {
	ID            int64     `db:"id" json:"id"`
	AppointmentID int64     `db:"appointment_id" json:"appointment_id"`
	Recipient     string    `db:"recipient" json:"recipient"`
	Subject       string    `db:"subject" json:"subject"`
	Body          string    `db:"body" json:"body"`
	Delivered     bool      `db:"delivered" json:"delivered"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
