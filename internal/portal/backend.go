package portal

import (
	"context"

	"medtrack/internal/model"
)

// Identity supplies the caller's authenticated user, or nil when no
// session is established. The session store implements it.
type Identity interface {
	Current() *model.User
}

// BookRequest is a patient's appointment request. Availability is not
// checked on this side; the backend owns the doctor's calendar.
type BookRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason,omitempty"`
}

// RecordRequest is a new medical record entry.
type RecordRequest struct {
	PatientID   string   `json:"patient_id"`
	Diagnosis   string   `json:"diagnosis"`
	Treatment   string   `json:"treatment,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Backend is the pluggable system of record. Exactly one implementation
// is selected at startup, REST client or in-memory fake, never both in
// one code path.
type Backend interface {
	Book(ctx context.Context, req BookRequest) (*model.Appointment, error)
	List(ctx context.Context) ([]model.Appointment, error)
	SetStatus(ctx context.Context, id string, target model.Status) (*model.Appointment, error)
	CreateRecord(ctx context.Context, req RecordRequest) (*model.MedicalRecord, error)
	ListRecords(ctx context.Context, patientID string) ([]model.MedicalRecord, error)
	Doctors(ctx context.Context) ([]model.Doctor, error)
}
