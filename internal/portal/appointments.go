// Package portal is the client core: the appointment lifecycle manager
// and the medical record accessor, working against a pluggable backend.
// Neither keeps any cache. Every call is a fresh round-trip, so a list
// after a mutation always observes the new state.
package portal

import (
	"context"
	"sort"

	"medtrack/internal/model"
)

// Appointments tracks an appointment's status through its fixed set of
// transitions: scheduled -> completed and scheduled -> cancelled, both
// doctor actions. Completed and cancelled are terminal.
type Appointments struct {
	backend Backend
	id      Identity
	policy  Policy
	guard   inflight
}

func NewAppointments(backend Backend, id Identity, policy Policy) *Appointments {
	return &Appointments{backend: backend, id: id, policy: policy}
}

func (a *Appointments) caller() (*model.User, error) {
	u := a.id.Current()
	if u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// Book creates an appointment in state scheduled. Patient-only. The
// doctor's availability is not checked here, the backend owns the
// calendar.
func (a *Appointments) Book(ctx context.Context, doctorID, date, timeOfDay, reason string) (*model.Appointment, error) {
	u, err := a.caller()
	if err != nil {
		return nil, err
	}
	if !a.policy.Can(u.Role, ActionBookAppointment) {
		return nil, &ForbiddenError{Message: "only patients can book appointments"}
	}
	if doctorID == "" || date == "" || timeOfDay == "" {
		return nil, &ValidationError{Message: "doctor, date and time are required"}
	}

	if err := a.guard.begin(ActionBookAppointment); err != nil {
		return nil, err
	}
	defer a.guard.end(ActionBookAppointment)

	return a.backend.Book(ctx, BookRequest{
		DoctorID: doctorID,
		Date:     date,
		Time:     timeOfDay,
		Reason:   reason,
	})
}

// SetStatus moves an appointment to a terminal state. Doctor-only; the
// only permitted targets are completed and cancelled.
func (a *Appointments) SetStatus(ctx context.Context, id string, target model.Status) (*model.Appointment, error) {
	u, err := a.caller()
	if err != nil {
		return nil, err
	}
	if !a.policy.Can(u.Role, ActionSetStatus) {
		return nil, &ForbiddenError{Message: "only doctors can update appointments"}
	}
	if !target.Terminal() {
		return nil, &InvalidTransitionError{Target: target}
	}

	if err := a.guard.begin(ActionSetStatus); err != nil {
		return nil, err
	}
	defer a.guard.end(ActionSetStatus)

	return a.backend.SetStatus(ctx, id, target)
}

// List returns the appointments visible to the caller: a patient sees
// their own, a doctor the ones assigned to them. No ordering guarantee;
// view code that wants chronology calls SortChronological.
func (a *Appointments) List(ctx context.Context) ([]model.Appointment, error) {
	if _, err := a.caller(); err != nil {
		return nil, err
	}
	return a.backend.List(ctx)
}

// Doctors returns the bookable doctor directory.
func (a *Appointments) Doctors(ctx context.Context) ([]model.Doctor, error) {
	u, err := a.caller()
	if err != nil {
		return nil, err
	}
	if !a.policy.Can(u.Role, ActionListDoctors) {
		return nil, &ForbiddenError{Message: "access denied"}
	}
	return a.backend.Doctors(ctx)
}

// SortChronological orders appointments by (date, time) in place.
func SortChronological(apts []model.Appointment) {
	sort.Slice(apts, func(i, j int) bool {
		if apts[i].Date != apts[j].Date {
			return apts[i].Date < apts[j].Date
		}
		return apts[i].Time < apts[j].Time
	})
}
