package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinica/sistema/internal/domain/directory"
	"github.com/clinica/sistema/internal/domain/patient"
	"github.com/clinica/sistema/internal/platform/mail"
)

// -- Mock Repositories --

type mockSlotRepo struct {
	slots  map[int64]*Slot
	nextID int64
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[int64]*Slot), nextID: 1}
}

func (m *mockSlotRepo) Create(_ context.Context, sl *Slot) error {
	sl.ID = m.nextID
	m.nextID++
	sl.CreatedAt = time.Now()
	sl.UpdatedAt = time.Now()
	m.slots[sl.ID] = sl
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id int64) (*Slot, error) {
	sl, ok := m.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sl, nil
}

func (m *mockSlotRepo) GetForBooking(_ context.Context, doctorID int64, date time.Time, timeOfDay string) (*Slot, error) {
	for _, sl := range m.slots {
		if sl.DoctorID == doctorID && sl.Date.Equal(date) && sl.Time == timeOfDay {
			return sl, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockSlotRepo) SetAvailable(_ context.Context, id int64, available bool) error {
	sl, ok := m.slots[id]
	if !ok {
		return ErrNotFound
	}
	sl.Available = available
	return nil
}

func (m *mockSlotRepo) ListAvailableByDoctor(_ context.Context, doctorID int64, from time.Time) ([]*Slot, error) {
	var result []*Slot
	for _, sl := range m.slots {
		if sl.DoctorID == doctorID && sl.Available && !sl.Date.Before(from) {
			result = append(result, sl)
		}
	}
	return result, nil
}

func (m *mockSlotRepo) Count(_ context.Context) (int, error) {
	return len(m.slots), nil
}

type mockAppointmentRepo struct {
	appts     map[int64]*Appointment
	nextID    int64
	createErr error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appts: make(map[int64]*Appointment), nextID: 1}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	stored := *a
	m.appts[a.ID] = &stored
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockAppointmentRepo) SetNotification(_ context.Context, id, notificationID int64) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.NotificationID = &notificationID
	return nil
}

func (m *mockAppointmentRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByPatientAndStatus(_ context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID && a.Status == status {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByPatientAndStatusNot(_ context.Context, patientID int64, status string, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID && a.Status != status {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

type mockNotificationRepo struct {
	notifs    map[int64]*Notification
	nextID    int64
	createErr error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifs: make(map[int64]*Notification), nextID: 1}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	m.notifs[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) MarkDelivered(_ context.Context, id int64) error {
	n, ok := m.notifs[id]
	if !ok {
		return ErrNotFound
	}
	n.Delivered = true
	return nil
}

func (m *mockNotificationRepo) ListByAppointment(_ context.Context, appointmentID int64) ([]*Notification, error) {
	var result []*Notification
	for _, n := range m.notifs {
		if n.AppointmentID == appointmentID {
			result = append(result, n)
		}
	}
	return result, nil
}

type mockPatientDir struct {
	patients map[int64]*patient.Patient
}

func (m *mockPatientDir) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

type mockDoctorDir struct {
	doctors map[int64]*directory.Doctor
}

func (m *mockDoctorDir) GetByID(_ context.Context, id int64) (*directory.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return d, nil
}

// passthroughTx runs the function without a real transaction, which is all
// the map-backed mocks need.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockMailer struct {
	sent    []mail.Message
	sendErr error
}

func (m *mockMailer) Send(msg mail.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

// -- Fixture --

type fixture struct {
	svc     *Service
	slots   *mockSlotRepo
	appts   *mockAppointmentRepo
	notifs  *mockNotificationRepo
	mailer  *mockMailer
	date    time.Time
	dateStr string
}

func newFixture() *fixture {
	slots := newMockSlotRepo()
	appts := newMockAppointmentRepo()
	notifs := newMockNotificationRepo()
	mailer := &mockMailer{}

	patients := &mockPatientDir{patients: map[int64]*patient.Patient{
		1: {ID: 1, FullName: "Ana Morales", Email: "ana@example.com"},
	}}
	doctors := &mockDoctorDir{doctors: map[int64]*directory.Doctor{
		10: {ID: 10, FullName: "Dr. Vega", SpecialtyID: 3, SpecialtyName: "Cardiología", Active: true},
	}}

	svc := NewService(slots, appts, notifs, patients, doctors,
		passthroughTx{}, mailer, zerolog.Nop())

	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	slots.Create(context.Background(), &Slot{DoctorID: 10, Date: date, Time: "09:00", Available: true})

	return &fixture{
		svc:     svc,
		slots:   slots,
		appts:   appts,
		notifs:  notifs,
		mailer:  mailer,
		date:    date,
		dateStr: "2026-09-03",
	}
}

func (f *fixture) book(t *testing.T) *Appointment {
	t.Helper()
	appt, err := f.svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "09:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error: %v", err)
	}
	return appt
}

// -- CreateAppointment --

func TestCreateAppointment(t *testing.T) {
	f := newFixture()
	appt := f.book(t)

	if appt.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, appt.Status)
	}
	if appt.ID == 0 {
		t.Error("expected appointment id to be assigned")
	}

	slot, _ := f.slots.GetByID(context.Background(), appt.SlotID)
	if slot.Available {
		t.Error("expected slot to be unavailable after booking")
	}
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	f := newFixture()
	f.book(t)

	_, err := f.svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "09:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
	if len(f.appts.appts) != 1 {
		t.Errorf("expected exactly 1 appointment, got %d", len(f.appts.appts))
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateAppointmentInput
	}{
		{"blank date", CreateAppointmentInput{PatientID: 1, DoctorID: 10, Date: "  ", Time: "09:00"}},
		{"blank time", CreateAppointmentInput{PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: ""}},
		{"zero patient", CreateAppointmentInput{PatientID: 0, DoctorID: 10, Date: f.dateStr, Time: "09:00"}},
		{"negative doctor", CreateAppointmentInput{PatientID: 1, DoctorID: -5, Date: f.dateStr, Time: "09:00"}},
		{"malformed date", CreateAppointmentInput{PatientID: 1, DoctorID: 10, Date: "03/09/2026", Time: "09:00"}},
		{"malformed time", CreateAppointmentInput{PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "9am"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.CreateAppointment(ctx, tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateAppointment_UnknownReferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: 999, DoctorID: 10, Date: f.dateStr, Time: "09:00",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown patient, got %v", err)
	}

	_, err = f.svc.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: 1, DoctorID: 999, Date: f.dateStr, Time: "09:00",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown doctor, got %v", err)
	}

	_, err = f.svc.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "23:45",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing slot, got %v", err)
	}
}

func TestCreateAppointment_SendsConfirmation(t *testing.T) {
	f := newFixture()
	appt := f.book(t)

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	if msg.To != "ana@example.com" {
		t.Errorf("unexpected recipient %s", msg.To)
	}
	if msg.Subject != ConfirmationSubject {
		t.Errorf("unexpected subject %s", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Hola Ana Morales") {
		t.Errorf("expected greeting in body, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "03/09/2026") {
		t.Errorf("expected dd/mm/yyyy date in body, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Dr. Vega") {
		t.Errorf("expected doctor name in body, got %q", msg.Body)
	}

	if appt.NotificationID == nil {
		t.Fatal("expected appointment linked to its notification")
	}
	n := f.notifs.notifs[*appt.NotificationID]
	if n == nil {
		t.Fatal("expected notification row")
	}
	if !n.Delivered {
		t.Error("expected notification marked delivered")
	}

	stored, _ := f.appts.GetByID(context.Background(), appt.ID)
	if stored.NotificationID == nil || *stored.NotificationID != n.ID {
		t.Error("expected stored appointment to reference the notification")
	}
}

func TestCreateAppointment_MailFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.mailer.sendErr = fmt.Errorf("smtp down")

	appt := f.book(t)

	if appt.Status != StatusPending {
		t.Errorf("expected booking to stand, got status %q", appt.Status)
	}
	if appt.NotificationID == nil {
		t.Fatal("expected notification recorded even when delivery fails")
	}
	if f.notifs.notifs[*appt.NotificationID].Delivered {
		t.Error("expected notification not marked delivered")
	}
}

func TestCreateAppointment_NotificationStoreFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.notifs.createErr = fmt.Errorf("db down")

	appt := f.book(t)

	if appt.Status != StatusPending {
		t.Errorf("expected booking to stand, got status %q", appt.Status)
	}
	if len(f.mailer.sent) != 0 {
		t.Error("expected no email when the notification cannot be recorded")
	}
}

// -- CancelAppointment --

func TestCancelAppointment(t *testing.T) {
	f := newFixture()
	appt := f.book(t)
	ctx := context.Background()

	if err := f.svc.CancelAppointment(ctx, 1, appt.ID); err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}

	stored, _ := f.appts.GetByID(ctx, appt.ID)
	if stored.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, stored.Status)
	}

	slot, _ := f.slots.GetByID(ctx, appt.SlotID)
	if !slot.Available {
		t.Error("expected slot re-enabled after cancellation")
	}
}

func TestCancelAppointment_Unknown(t *testing.T) {
	f := newFixture()

	err := f.svc.CancelAppointment(context.Background(), 1, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelAppointment_AlreadyCancelled(t *testing.T) {
	f := newFixture()
	appt := f.book(t)
	ctx := context.Background()

	if err := f.svc.CancelAppointment(ctx, 1, appt.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := f.svc.CancelAppointment(ctx, 1, appt.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelAppointment_ForeignPatient(t *testing.T) {
	f := newFixture()
	appt := f.book(t)

	err := f.svc.CancelAppointment(context.Background(), 2, appt.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign appointment, got %v", err)
	}
}

func TestCancelAppointment_MissingSlotIsNonFatal(t *testing.T) {
	f := newFixture()
	appt := f.book(t)
	ctx := context.Background()

	delete(f.slots.slots, appt.SlotID)

	if err := f.svc.CancelAppointment(ctx, 1, appt.ID); err != nil {
		t.Fatalf("expected cancellation to succeed without slot, got %v", err)
	}
	stored, _ := f.appts.GetByID(ctx, appt.ID)
	if stored.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, stored.Status)
	}
}

func TestCancelThenRebook(t *testing.T) {
	f := newFixture()
	appt := f.book(t)
	ctx := context.Background()

	if err := f.svc.CancelAppointment(ctx, 1, appt.ID); err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}

	rebooked, err := f.svc.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "09:00",
	})
	if err != nil {
		t.Fatalf("expected rebooking of a freed slot to succeed, got %v", err)
	}
	if rebooked.SlotID != appt.SlotID {
		t.Errorf("expected the same slot %d, got %d", appt.SlotID, rebooked.SlotID)
	}
}

// -- Queries --

func TestPendingAndHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.book(t)
	f.slots.Create(ctx, &Slot{DoctorID: 10, Date: f.date, Time: "11:00", Available: true})
	second, err := f.svc.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: 1, DoctorID: 10, Date: f.dateStr, Time: "11:00",
	})
	if err != nil {
		t.Fatalf("second booking failed: %v", err)
	}
	if err := f.svc.CancelAppointment(ctx, 1, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	pending, total, err := f.svc.PendingAppointments(ctx, 1, 20, 0)
	if err != nil {
		t.Fatalf("PendingAppointments() error: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Fatalf("expected 1 pending appointment, got %d", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Errorf("expected pending appointment %d, got %d", second.ID, pending[0].ID)
	}

	history, total, err := f.svc.AppointmentHistory(ctx, 1, 20, 0)
	if err != nil {
		t.Fatalf("AppointmentHistory() error: %v", err)
	}
	if total != 1 || len(history) != 1 {
		t.Fatalf("expected only the cancelled appointment in history, got %d", len(history))
	}
	if history[0].ID != first.ID {
		t.Errorf("expected history to hold appointment %d, got %d", first.ID, history[0].ID)
	}
	for _, a := range history {
		if a.Status == StatusPending {
			t.Errorf("appointment %d is still %q, history must exclude it", a.ID, StatusPending)
		}
	}
}

func TestPendingAndHistory_UnknownPatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, _, err := f.svc.PendingAppointments(ctx, 999, 20, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("PendingAppointments: expected ErrNotFound for unknown patient, got %v", err)
	}
	if _, _, err := f.svc.AppointmentHistory(ctx, 999, 20, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppointmentHistory: expected ErrNotFound for unknown patient, got %v", err)
	}
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.slots.Create(ctx, &Slot{DoctorID: 10, Date: f.date, Time: "11:00", Available: true})
	f.book(t) // consumes 09:00

	items, err := f.svc.AvailableSlots(ctx, 10, f.date)
	if err != nil {
		t.Fatalf("AvailableSlots() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 open slot, got %d", len(items))
	}
	if items[0].Time != "11:00" {
		t.Errorf("expected the 11:00 slot, got %s", items[0].Time)
	}
}

func TestAvailableSlots_UnknownDoctor(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AvailableSlots(context.Background(), 999, f.date)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
