package db

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"), log.New(io.Discard))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func seedTherapist(t *testing.T, d *DB) int64 {
	t.Helper()
	id, err := d.CreateTherapist(context.Background(), "Dr. Rao", "rao@example.com", "hash")
	if err != nil {
		t.Fatalf("create therapist: %v", err)
	}
	return id
}

func seedPatient(t *testing.T, d *DB, therapistID int64) int64 {
	t.Helper()
	id, err := d.CreatePatient(context.Background(), Patient{
		TherapistID: therapistID,
		Name:        "Asha",
		Age:         31,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return id
}

func TestTherapistRoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id := seedTherapist(t, d)
	got, err := d.GetTherapistByEmail(ctx, "rao@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != id || got.Name != "Dr. Rao" || got.PasswordHash != "hash" {
		t.Errorf("unexpected therapist: %+v", got)
	}

	if _, err := d.GetTherapistByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := d.CreateTherapist(ctx, "Dup", "rao@example.com", "x"); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestPatientCRUDScopedToTherapist(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	alice := seedTherapist(t, d)
	bob, err := d.CreateTherapist(ctx, "Dr. Bose", "bose@example.com", "hash")
	if err != nil {
		t.Fatalf("create second therapist: %v", err)
	}

	patientID := seedPatient(t, d, alice)

	if _, err := d.GetPatient(ctx, patientID, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("patient leaked across therapists: %v", err)
	}

	p, err := d.GetPatient(ctx, patientID, alice)
	if err != nil {
		t.Fatalf("get patient: %v", err)
	}
	p.Occupation = "teacher"
	if err := d.UpdatePatient(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	patients, err := d.ListPatients(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(patients) != 1 || patients[0].Occupation != "teacher" {
		t.Errorf("unexpected list: %+v", patients)
	}

	if err := d.DeletePatient(ctx, patientID, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-therapist delete should be not found, got %v", err)
	}
	if err := d.DeletePatient(ctx, patientID, alice); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSessionNumbersIncrementPerPatient(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	therapist := seedTherapist(t, d)
	first := seedPatient(t, d, therapist)
	second, err := d.CreatePatient(ctx, Patient{TherapistID: therapist, Name: "Ravi"})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := d.CreateSession(ctx, Session{PatientID: first, Language: "hindi"}); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	otherID, err := d.CreateSession(ctx, Session{PatientID: second, Language: "auto"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	sessions, err := d.ListSessions(ctx, first)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i, s := range sessions {
		if s.SessionNumber != i+1 {
			t.Errorf("session %d has number %d", i, s.SessionNumber)
		}
	}

	other, err := d.GetSession(ctx, otherID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if other.SessionNumber != 1 {
		t.Errorf("numbering leaked across patients: %d", other.SessionNumber)
	}
}

func TestSessionUpdate(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	therapist := seedTherapist(t, d)
	patient := seedPatient(t, d, therapist)
	id, err := d.CreateSession(ctx, Session{PatientID: patient, Language: "auto"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	s, err := d.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	s.Notes = "made progress"
	s.Diagnosis = "GAD"
	s.IsCompleted = true
	if err := d.UpdateSession(ctx, s); err != nil {
		t.Fatalf("update session: %v", err)
	}

	got, err := d.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Notes != "made progress" || got.Diagnosis != "GAD" || !got.IsCompleted {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestAppendTranscript(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	therapist := seedTherapist(t, d)
	patient := seedPatient(t, d, therapist)
	id, err := d.CreateSession(ctx, Session{PatientID: patient})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := d.AppendTranscript(ctx, id, "first segment"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := d.AppendTranscript(ctx, id, "second segment"); err != nil {
		t.Fatalf("append: %v", err)
	}

	s, err := d.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.OriginalTranscription != "first segment\nsecond segment" {
		t.Errorf("got transcript %q", s.OriginalTranscription)
	}

	if err := d.AppendTranscript(ctx, 9999, "text"); !errors.Is(err, ErrNotFound) {
		t.Errorf("append to missing session should be not found, got %v", err)
	}
}
