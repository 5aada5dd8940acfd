package scheduling

import (
	"context"
	"errors"
	"time"

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

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, doctor_id, date, time, available, created_at, updated_at`

func (r *slotRepoPG) scanSlot(row pgx.Row) (*Slot, error) {
	var sl Slot
	err := row.Scan(&sl.ID, &sl.DoctorID, &sl.Date, &sl.Time, &sl.Available,
		&sl.CreatedAt, &sl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

func (r *slotRepoPG) Create(ctx context.Context, sl *Slot) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO slots (doctor_id, date, time, available)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		sl.DoctorID, sl.Date, sl.Time, sl.Available).
		Scan(&sl.ID, &sl.CreatedAt, &sl.UpdatedAt)
}

func (r *slotRepoPG) GetByID(ctx context.Context, id int64) (*Slot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+slotCols+` FROM slots WHERE id = $1`, id))
}

// GetForBooking takes a row lock so concurrent bookings of the same slot
// serialize; the second transaction sees available=false and gives up.
func (r *slotRepoPG) GetForBooking(ctx context.Context, doctorID int64, date time.Time, timeOfDay string) (*Slot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx, `
		SELECT `+slotCols+` FROM slots
		WHERE doctor_id = $1 AND date = $2 AND time = $3
		FOR UPDATE`,
		doctorID, date, timeOfDay))
}

func (r *slotRepoPG) SetAvailable(ctx context.Context, id int64, available bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE slots SET available = $2, updated_at = NOW() WHERE id = $1`,
		id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepoPG) ListAvailableByDoctor(ctx context.Context, doctorID int64, from time.Time) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM slots
		WHERE doctor_id = $1 AND available AND date >= $2
		ORDER BY date ASC, time ASC`,
		doctorID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		sl, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sl)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM slots`).Scan(&n)
	return n, err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `a.id, a.patient_id, a.doctor_id, a.slot_id, a.date, a.time,
	a.status, a.notification_id, d.full_name, s.name, a.created_at, a.updated_at`

const apptFrom = ` FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN specialties s ON s.id = d.specialty_id`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotID, &a.Date, &a.Time,
		&a.Status, &a.NotificationID, &a.DoctorName, &a.SpecialtyName,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, slot_id, date, time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.SlotID, a.Date, a.Time, a.Status).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) SetNotification(ctx context.Context, id, notificationID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET notification_id = $2, updated_at = NOW() WHERE id = $1`,
		id, notificationID)
	return err
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		ORDER BY a.date DESC, a.time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.time DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByPatientAndStatus(ctx context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1 AND status = $2`,
		patientID, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.patient_id = $1 AND a.status = $2
		ORDER BY a.date ASC, a.time ASC LIMIT $3 OFFSET $4`,
		patientID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByPatientAndStatusNot(ctx context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1 AND status <> $2`,
		patientID, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.patient_id = $1 AND a.status <> $2
		ORDER BY a.date DESC, a.time DESC LIMIT $3 OFFSET $4`,
		patientID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Notification Repository ===========

type notificationRepoPG struct{ pool *pgxpool.Pool }

func NewNotificationRepoPG(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepoPG{pool: pool}
}

func (r *notificationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *notificationRepoPG) Create(ctx context.Context, n *Notification) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notifications (appointment_id, recipient, subject, body, delivered)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		n.AppointmentID, n.Recipient, n.Subject, n.Body, n.Delivered).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepoPG) MarkDelivered(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE notifications SET delivered = TRUE WHERE id = $1`, id)
	return err
}

func (r *notificationRepoPG) ListByAppointment(ctx context.Context, appointmentID int64) ([]*Notification, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, recipient, subject, body, delivered, created_at
		FROM notifications WHERE appointment_id = $1 ORDER BY created_at ASC`,
		appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.AppointmentID, &n.Recipient, &n.Subject,
			&n.Body, &n.Delivered, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}
