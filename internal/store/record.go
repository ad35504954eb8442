package store

import (
	"context"
	"encoding/json"

	"medtrack/internal/model"
)

func (s *Postgres) CreateRecord(ctx context.Context, r *model.MedicalRecord) error {
	meds, err := json.Marshal(r.Medications)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO medical_records (id, patient_id, doctor_id, diagnosis, treatment, medications, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.PatientID, r.DoctorID, r.Diagnosis, r.Treatment, meds, r.Notes,
	)
	return pgErr(err)
}

func (s *Postgres) ListRecords(ctx context.Context, patientID string) ([]model.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_id, doctor_id, diagnosis, treatment, medications, notes, created_at
		 FROM medical_records WHERE patient_id = $1 ORDER BY created_at`, patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MedicalRecord{}
	for rows.Next() {
		var r model.MedicalRecord
		var meds []byte
		if err := rows.Scan(
			&r.ID, &r.PatientID, &r.DoctorID, &r.Diagnosis, &r.Treatment,
			&meds, &r.Notes, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meds, &r.Medications); err != nil {
			return nil, err
		}
		if r.Medications == nil {
			r.Medications = []string{}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Postgres) HasRelationship(ctx context.Context, doctorID, patientID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments WHERE doctor_id = $1 AND patient_id = $2
			UNION
			SELECT 1 FROM medical_records WHERE doctor_id = $1 AND patient_id = $2
		)`, doctorID, patientID,
	).Scan(&exists)
	return exists, err
}
