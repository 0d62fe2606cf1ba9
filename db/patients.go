package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Patient struct {
	ID               int64     `json:"id"`
	TherapistID      int64     `json:"therapist_id"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	Occupation       string    `json:"occupation"`
	EmergencyContact string    `json:"emergency_contact"`
	MedicalHistory   string    `json:"medical_history"`
	CreatedAt        time.Time `json:"created_at"`
}

const patientColumns = `id, therapist_id, name, age, gender, phone, email,
	address, occupation, emergency_contact, medical_history, created_at`

func scanPatient(row interface{ Scan(...any) error }) (Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.TherapistID, &p.Name, &p.Age, &p.Gender, &p.Phone,
		&p.Email, &p.Address, &p.Occupation, &p.EmergencyContact,
		&p.MedicalHistory, &p.CreatedAt,
	)
	return p, err
}

func (d *DB) CreatePatient(ctx context.Context, p Patient) (int64, error) {
	res, err := d.ExecContext(
		ctx,
		`INSERT INTO patients
		 (therapist_id, name, age, gender, phone, email, address,
		  occupation, emergency_contact, medical_history)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TherapistID, p.Name, p.Age, p.Gender, p.Phone, p.Email,
		p.Address, p.Occupation, p.EmergencyContact, p.MedicalHistory,
	)
	if err != nil {
		return 0, fmt.Errorf("create patient: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) GetPatient(ctx context.Context, id, therapistID int64) (Patient, error) {
	row := d.QueryRowContext(
		ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = ? AND therapist_id = ?`,
		id, therapistID,
	)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Patient{}, ErrNotFound
	}
	if err != nil {
		return Patient{}, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (d *DB) ListPatients(ctx context.Context, therapistID int64) ([]Patient, error) {
	rows, err := d.QueryContext(
		ctx,
		`SELECT `+patientColumns+` FROM patients
		 WHERE therapist_id = ? ORDER BY name`,
		therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (d *DB) UpdatePatient(ctx context.Context, p Patient) error {
	res, err := d.ExecContext(
		ctx,
		`UPDATE patients SET name = ?, age = ?, gender = ?, phone = ?,
		 email = ?, address = ?, occupation = ?, emergency_contact = ?,
		 medical_history = ?
		 WHERE id = ? AND therapist_id = ?`,
		p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address,
		p.Occupation, p.EmergencyContact, p.MedicalHistory,
		p.ID, p.TherapistID,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeletePatient(ctx context.Context, id, therapistID int64) error {
	res, err := d.ExecContext(
		ctx,
		`DELETE FROM patients WHERE id = ? AND therapist_id = ?`,
		id, therapistID,
	)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
