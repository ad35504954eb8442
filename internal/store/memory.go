package store

import (
	"context"
	"sync"

	"medtrack/internal/model"
)

// Memory is the in-process Store used by tests and by the server's -dev
// mode. Behavior matches the postgres implementation.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]*model.User // by id
	emails       map[string]string      // email -> id
	appointments map[string]*model.Appointment
	records      []*model.MedicalRecord
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]*model.User),
		emails:       make(map[string]string),
		appointments: make(map[string]*model.Appointment),
	}
}

func (s *Memory) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return ErrExists
	}
	cp := *u
	s.users[u.ID] = &cp
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Memory) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Memory) ListDoctors(_ context.Context) ([]model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Doctor
	for _, u := range s.users {
		if u.Role == model.RoleDoctor {
			out = append(out, model.Doctor{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

func (s *Memory) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return ErrExists
	}
	cp := *a
	s.appointments[a.ID] = &cp
	return nil
}

func (s *Memory) AppointmentByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Memory) ListAppointments(_ context.Context, userID string, role model.Role) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if (role == model.RoleDoctor && a.DoctorID == userID) ||
			(role != model.RoleDoctor && a.PatientID == userID) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Memory) SetAppointmentStatus(_ context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *Memory) CreateRecord(_ context.Context, r *model.MedicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	if cp.Medications == nil {
		cp.Medications = []string{}
	}
	s.records = append(s.records, &cp)
	return nil
}

func (s *Memory) ListRecords(_ context.Context, patientID string) ([]model.MedicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.MedicalRecord{}
	for _, r := range s.records {
		if r.PatientID == patientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Memory) HasRelationship(_ context.Context, doctorID, patientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID {
			return true, nil
		}
	}
	for _, r := range s.records {
		if r.DoctorID == doctorID && r.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}
