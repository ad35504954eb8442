package portal

import (
	"context"
	"net/http"

	"medtrack/internal/model"
	"medtrack/internal/transport"
)

// restBackend forwards every call through the record transport. It fails
// fast with ErrUnauthenticated when no session exists, before any
// network round-trip is attempted.
type restBackend struct {
	api *transport.Client
	id  Identity
}

func NewRESTBackend(api *transport.Client, id Identity) Backend {
	return &restBackend{api: api, id: id}
}

func (b *restBackend) authed() error {
	if b.id.Current() == nil {
		return ErrUnauthenticated
	}
	return nil
}

func (b *restBackend) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	var resp struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := b.api.Do(ctx, http.MethodPost, "/appointments", req, &resp); err != nil {
		return nil, translate(err)
	}
	return &resp.Appointment, nil
}

func (b *restBackend) List(ctx context.Context) ([]model.Appointment, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	var resp struct {
		Appointments []model.Appointment `json:"appointments"`
	}
	if err := b.api.Do(ctx, http.MethodGet, "/appointments", nil, &resp); err != nil {
		return nil, translate(err)
	}
	return resp.Appointments, nil
}

func (b *restBackend) SetStatus(ctx context.Context, id string, target model.Status) (*model.Appointment, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	body := struct {
		Status model.Status `json:"status"`
	}{Status: target}
	var resp struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := b.api.Do(ctx, http.MethodPut, "/appointments/"+id, body, &resp); err != nil {
		return nil, translate(err)
	}
	return &resp.Appointment, nil
}

func (b *restBackend) CreateRecord(ctx context.Context, req RecordRequest) (*model.MedicalRecord, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	var resp struct {
		Record model.MedicalRecord `json:"record"`
	}
	if err := b.api.Do(ctx, http.MethodPost, "/medical-records", req, &resp); err != nil {
		return nil, translate(err)
	}
	return &resp.Record, nil
}

func (b *restBackend) ListRecords(ctx context.Context, patientID string) ([]model.MedicalRecord, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	var resp struct {
		Records []model.MedicalRecord `json:"records"`
	}
	if err := b.api.Do(ctx, http.MethodGet, "/medical-records/"+patientID, nil, &resp); err != nil {
		return nil, translate(err)
	}
	return resp.Records, nil
}

func (b *restBackend) Doctors(ctx context.Context) ([]model.Doctor, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	var resp struct {
		Doctors []model.Doctor `json:"doctors"`
	}
	if err := b.api.Do(ctx, http.MethodGet, "/users/doctors", nil, &resp); err != nil {
		return nil, translate(err)
	}
	return resp.Doctors, nil
}
