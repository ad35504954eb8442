package model

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Status is the appointment lifecycle state. An appointment starts out
// scheduled and moves to at most one of the two terminal states.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// Doctor is the trimmed-down user shape returned by the doctor directory.
type Doctor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Appointment struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM
	Reason    string    `json:"reason,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// MedicalRecord entries are append-only: once written they are never
// updated or deleted. DoctorID is empty when a patient filed the entry
// themselves (only possible when that policy is switched on).
type MedicalRecord struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id,omitempty"`
	Diagnosis   string    `json:"diagnosis"`
	Treatment   string    `json:"treatment,omitempty"`
	Medications []string  `json:"medications"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}
