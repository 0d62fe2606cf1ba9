package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Session struct {
	ID                      int64     `json:"id"`
	PatientID               int64     `json:"patient_id"`
	SessionNumber           int       `json:"session_number"`
	SessionDate             time.Time `json:"session_date"`
	Language                string    `json:"language"`
	Duration                int       `json:"duration"`
	OriginalTranscription   string    `json:"original_transcription"`
	TranslatedTranscription string    `json:"translated_transcription"`
	TranslationLanguage     string    `json:"translation_language"`
	Notes                   string    `json:"notes"`
	Diagnosis               string    `json:"diagnosis"`
	TreatmentPlan           string    `json:"treatment_plan"`
	IsCompleted             bool      `json:"is_completed"`
	CreatedAt               time.Time `json:"created_at"`
}

const sessionColumns = `id, patient_id, session_number, session_date,
	language, duration, original_transcription, translated_transcription,
	translation_language, notes, diagnosis, treatment_plan, is_completed,
	created_at`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.PatientID, &s.SessionNumber, &s.SessionDate,
		&s.Language, &s.Duration, &s.OriginalTranscription,
		&s.TranslatedTranscription, &s.TranslationLanguage, &s.Notes,
		&s.Diagnosis, &s.TreatmentPlan, &s.IsCompleted, &s.CreatedAt,
	)
	return s, err
}

// CreateSession inserts a session with the next per-patient number.
func (d *DB) CreateSession(ctx context.Context, s Session) (int64, error) {
	res, err := d.ExecContext(
		ctx,
		`INSERT INTO sessions
		 (patient_id, session_number, language, duration,
		  original_transcription, notes)
		 VALUES (?,
		   (SELECT COALESCE(MAX(session_number), 0) + 1
		      FROM sessions WHERE patient_id = ?),
		   ?, ?, ?, ?)`,
		s.PatientID, s.PatientID, s.Language, s.Duration,
		s.OriginalTranscription, s.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) GetSession(ctx context.Context, id int64) (Session, error) {
	row := d.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`,
		id,
	)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (d *DB) ListSessions(ctx context.Context, patientID int64) ([]Session, error) {
	rows, err := d.QueryContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE patient_id = ? ORDER BY session_number`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (d *DB) UpdateSession(ctx context.Context, s Session) error {
	res, err := d.ExecContext(
		ctx,
		`UPDATE sessions SET duration = ?, original_transcription = ?,
		 translated_transcription = ?, translation_language = ?,
		 notes = ?, diagnosis = ?, treatment_plan = ?, is_completed = ?
		 WHERE id = ?`,
		s.Duration, s.OriginalTranscription, s.TranslatedTranscription,
		s.TranslationLanguage, s.Notes, s.Diagnosis, s.TreatmentPlan,
		s.IsCompleted, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteSession(ctx context.Context, id int64) error {
	res, err := d.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendTranscript adds finalized relay output to a session record,
// separated from any earlier transcript by a newline.
func (d *DB) AppendTranscript(ctx context.Context, id int64, text string) error {
	res, err := d.ExecContext(
		ctx,
		`UPDATE sessions SET original_transcription =
		   CASE WHEN original_transcription = ''
		        THEN ?
		        ELSE original_transcription || char(10) || ? END
		 WHERE id = ?`,
		text, text, id,
	)
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
