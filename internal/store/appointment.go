package store

import (
	"context"

	"medtrack/internal/model"
)

func (s *Postgres) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, patient_id, doctor_id, date, time, reason, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status,
	)
	return pgErr(err)
}

func (s *Postgres) AppointmentByID(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, patient_id, doctor_id, date, time, reason, status, created_at
		 FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, pgErr(err)
	}
	return a, nil
}

// ListAppointments returns the rows visible to the caller: patients see
// their own bookings, doctors the ones assigned to them. No ORDER BY,
// chronological ordering is a consumer concern.
func (s *Postgres) ListAppointments(ctx context.Context, userID string, role model.Role) ([]model.Appointment, error) {
	column := "patient_id"
	if role == model.RoleDoctor {
		column = "doctor_id"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_id, doctor_id, date, time, reason, status, created_at
		 FROM appointments WHERE `+column+` = $1`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
			&a.Reason, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) SetAppointmentStatus(ctx context.Context, id string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
