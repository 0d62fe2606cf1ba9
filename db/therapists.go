package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

type Therapist struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *DB) CreateTherapist(
	ctx context.Context,
	name, email, passwordHash string,
) (int64, error) {
	res, err := d.ExecContext(
		ctx,
		`INSERT INTO therapists (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("create therapist: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) GetTherapistByEmail(
	ctx context.Context,
	email string,
) (Therapist, error) {
	var t Therapist
	err := d.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM therapists WHERE email = ?`,
		email,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Therapist{}, ErrNotFound
	}
	if err != nil {
		return Therapist{}, fmt.Errorf("get therapist: %w", err)
	}
	return t, nil
}

func (d *DB) GetTherapist(ctx context.Context, id int64) (Therapist, error) {
	var t Therapist
	err := d.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM therapists WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Therapist{}, ErrNotFound
	}
	if err != nil {
		return Therapist{}, fmt.Errorf("get therapist: %w", err)
	}
	return t, nil
}
