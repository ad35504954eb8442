package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medtrack/internal/model"
)

// MemoryBackend keeps everything in process. It mirrors the server's
// visibility filtering, transition rules and record relationship check,
// so tests and offline development behave like the real thing.
type MemoryBackend struct {
	id     Identity
	policy Policy

	mu           sync.RWMutex
	appointments map[string]*model.Appointment
	records      map[string]*model.MedicalRecord
	doctors      []model.Doctor
}

func NewMemoryBackend(id Identity, policy Policy) *MemoryBackend {
	return &MemoryBackend{
		id:           id,
		policy:       policy,
		appointments: make(map[string]*model.Appointment),
		records:      make(map[string]*model.MedicalRecord),
	}
}

// AddDoctor seeds the doctor directory.
func (b *MemoryBackend) AddDoctor(d model.Doctor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doctors = append(b.doctors, d)
}

func (b *MemoryBackend) caller() (*model.User, error) {
	u := b.id.Current()
	if u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

func (b *MemoryBackend) Book(_ context.Context, req BookRequest) (*model.Appointment, error) {
	u, err := b.caller()
	if err != nil {
		return nil, err
	}
	if u.Role != model.RolePatient {
		return nil, &ForbiddenError{Message: "only patients can book appointments"}
	}
	if req.DoctorID == "" || req.Date == "" || req.Time == "" {
		return nil, &ValidationError{Message: "doctor, date and time are required"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	apt := &model.Appointment{
		ID:        uuid.New().String(),
		PatientID: u.ID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    model.StatusScheduled,
		CreatedAt: time.Now().UTC(),
	}
	b.appointments[apt.ID] = apt
	cp := *apt
	return &cp, nil
}

func (b *MemoryBackend) List(_ context.Context) ([]model.Appointment, error) {
	u, err := b.caller()
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []model.Appointment
	for _, apt := range b.appointments {
		if (u.Role == model.RoleDoctor && apt.DoctorID == u.ID) ||
			(u.Role == model.RolePatient && apt.PatientID == u.ID) {
			out = append(out, *apt)
		}
	}
	return out, nil
}

func (b *MemoryBackend) SetStatus(_ context.Context, id string, target model.Status) (*model.Appointment, error) {
	u, err := b.caller()
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleDoctor {
		return nil, &ForbiddenError{Message: "only doctors can update appointments"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	apt, ok := b.appointments[id]
	// not yours and missing look the same
	if !ok || apt.DoctorID != u.ID {
		return nil, &NotFoundError{Message: "appointment not found"}
	}
	if !target.Terminal() {
		return nil, &InvalidTransitionError{Target: target}
	}
	if apt.Status.Terminal() {
		return nil, &InvalidTransitionError{
			Target: target,
			Reason: "appointment is already " + string(apt.Status),
		}
	}
	apt.Status = target
	cp := *apt
	return &cp, nil
}

func (b *MemoryBackend) CreateRecord(_ context.Context, req RecordRequest) (*model.MedicalRecord, error) {
	u, err := b.caller()
	if err != nil {
		return nil, err
	}
	doctorID := ""
	switch u.Role {
	case model.RoleDoctor:
		doctorID = u.ID
	case model.RolePatient:
		if !b.policy.PatientRecords {
			return nil, &ForbiddenError{Message: "patients cannot create medical records"}
		}
		if req.PatientID != u.ID {
			return nil, &ForbiddenError{Message: "patients can only file their own records"}
		}
	}
	if req.PatientID == "" {
		return nil, &ValidationError{Message: "patient is required"}
	}
	if strings.TrimSpace(req.Diagnosis) == "" {
		return nil, &ValidationError{Message: "diagnosis is required"}
	}

	meds := req.Medications
	if meds == nil {
		meds = []string{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := &model.MedicalRecord{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		DoctorID:    doctorID,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Medications: meds,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	b.records[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (b *MemoryBackend) ListRecords(_ context.Context, patientID string) ([]model.MedicalRecord, error) {
	u, err := b.caller()
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if u.Role == model.RolePatient && u.ID != patientID {
		return nil, &ForbiddenError{Message: "access denied"}
	}
	if u.Role == model.RoleDoctor && !b.related(u.ID, patientID) {
		return nil, &ForbiddenError{Message: "no treatment relationship with this patient"}
	}
	out := []model.MedicalRecord{}
	for _, rec := range b.records {
		if rec.PatientID == patientID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// related mirrors the backend's relationship rule: a doctor may read a
// patient's records once they share an appointment or a record entry.
func (b *MemoryBackend) related(doctorID, patientID string) bool {
	for _, apt := range b.appointments {
		if apt.DoctorID == doctorID && apt.PatientID == patientID {
			return true
		}
	}
	for _, rec := range b.records {
		if rec.DoctorID == doctorID && rec.PatientID == patientID {
			return true
		}
	}
	return false
}

func (b *MemoryBackend) Doctors(_ context.Context) ([]model.Doctor, error) {
	if _, err := b.caller(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Doctor, len(b.doctors))
	copy(out, b.doctors)
	return out, nil
}
