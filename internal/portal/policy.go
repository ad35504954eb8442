package portal

import "medtrack/internal/model"

// Action names one user-facing capability. Role checks live here and
// nowhere else; view code asks Can() instead of comparing role strings.
type Action string

const (
	ActionBookAppointment Action = "appointment.book"
	ActionSetStatus       Action = "appointment.set-status"
	ActionCreateRecord    Action = "record.create"
	ActionViewRecords     Action = "record.view"
	ActionListDoctors     Action = "doctor.list"
)

// Policy is the single authorization boundary on the client side. The
// backend makes the final call; this only keeps requests that can never
// succeed from going out.
type Policy struct {
	// PatientRecords lets patients file medical records about themselves.
	// Off by default: record creation is a doctor capability.
	PatientRecords bool
}

func (p Policy) Can(role model.Role, action Action) bool {
	switch action {
	case ActionBookAppointment:
		return role == model.RolePatient
	case ActionSetStatus:
		return role == model.RoleDoctor
	case ActionCreateRecord:
		return role == model.RoleDoctor || (p.PatientRecords && role == model.RolePatient)
	case ActionViewRecords, ActionListDoctors:
		return role == model.RolePatient || role == model.RoleDoctor
	}
	return false
}
