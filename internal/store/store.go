package store

import (
	"context"
	"errors"

	"medtrack/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store is the backend's system of record. The postgres implementation
// serves deployments; the memory one serves tests and -dev mode. They are
// selected at startup and never mixed.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	ListDoctors(ctx context.Context) ([]model.Doctor, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	AppointmentByID(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, userID string, role model.Role) ([]model.Appointment, error)
	SetAppointmentStatus(ctx context.Context, id string, status model.Status) error

	CreateRecord(ctx context.Context, r *model.MedicalRecord) error
	ListRecords(ctx context.Context, patientID string) ([]model.MedicalRecord, error)

	// HasRelationship reports whether the doctor shares an appointment or
	// a record entry with the patient. Gates record access for doctors.
	HasRelationship(ctx context.Context, doctorID, patientID string) (bool, error)
}
