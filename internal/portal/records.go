package portal

import (
	"context"
	"strings"

	"medtrack/internal/model"
)

// Records is the medical record accessor: append-only creation and
// role-gated retrieval. No update or delete exists anywhere.
type Records struct {
	backend Backend
	id      Identity
	policy  Policy
	guard   inflight
}

func NewRecords(backend Backend, id Identity, policy Policy) *Records {
	return &Records{backend: backend, id: id, policy: policy}
}

// Create files a new record for a patient. Doctors may always create;
// patients only for themselves, and only when the policy allows it.
func (r *Records) Create(ctx context.Context, patientID, diagnosis, treatment string, medications []string, notes string) (*model.MedicalRecord, error) {
	u := r.id.Current()
	if u == nil {
		return nil, ErrUnauthenticated
	}
	if !r.policy.Can(u.Role, ActionCreateRecord) {
		return nil, &ForbiddenError{Message: "patients cannot create medical records"}
	}
	if u.Role == model.RolePatient && patientID != u.ID {
		return nil, &ForbiddenError{Message: "patients can only file their own records"}
	}
	if patientID == "" {
		return nil, &ValidationError{Message: "patient is required"}
	}
	if strings.TrimSpace(diagnosis) == "" {
		return nil, &ValidationError{Message: "diagnosis is required"}
	}

	if err := r.guard.begin(ActionCreateRecord); err != nil {
		return nil, err
	}
	defer r.guard.end(ActionCreateRecord)

	return r.backend.CreateRecord(ctx, RecordRequest{
		PatientID:   patientID,
		Diagnosis:   diagnosis,
		Treatment:   treatment,
		Medications: medications,
		Notes:       notes,
	})
}

// ListFor returns the patient's records. The authorization decision is
// the backend's; a denial surfaces as *ForbiddenError.
func (r *Records) ListFor(ctx context.Context, patientID string) ([]model.MedicalRecord, error) {
	if r.id.Current() == nil {
		return nil, ErrUnauthenticated
	}
	return r.backend.ListRecords(ctx, patientID)
}
