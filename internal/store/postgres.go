// Package store is the Postgres persistence layer. The quota-guarded insert
// lives here so capacity can never be exceeded by concurrent submissions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dareleague/registration/internal/registration"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

const registrationColumns = `id, registration_id, full_name, document_id, age, phone, email,
	category, gender, shirt_size, gym, emergency_name, emergency_phone,
	payment_method, status, payment_proof_path, rejection_notes, created_at`

// InsertWithQuota performs the authoritative check-and-insert as one
// transaction: an advisory lock serializes writers on the same bucket, the
// fresh count decides, and the row goes in before the lock is released.
// Returns registration.ErrSlotsFull at capacity and
// registration.ErrDuplicateRef when the reference id is already taken.
func (p *Postgres) InsertWithQuota(ctx context.Context, reg *registration.Registration, maxSlots int) error {
	bucket := registration.BucketKey(reg.Category, reg.Gender)

	err := p.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, bucket); err != nil {
			return fmt.Errorf("bucket lock: %w", err)
		}

		var count int
		err := tx.QueryRow(ctx,
			`SELECT count(*) FROM registrations WHERE category = $1 AND gender = $2`,
			string(reg.Category), string(reg.Gender)).Scan(&count)
		if err != nil {
			return fmt.Errorf("bucket count: %w", err)
		}
		if count >= maxSlots {
			return registration.ErrSlotsFull
		}

		if reg.ID == "" {
			reg.ID = uuid.NewString()
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO registrations (id, registration_id, full_name, document_id, age, phone, email,
				category, gender, shirt_size, gym, emergency_name, emergency_phone,
				payment_method, status, payment_proof_path)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING created_at`,
			reg.ID, reg.RegistrationID, reg.FullName, reg.DocumentID, reg.Age, reg.Phone, reg.Email,
			string(reg.Category), string(reg.Gender), nullable(reg.ShirtSize), reg.Gym,
			reg.EmergencyName, reg.EmergencyPhone, reg.PaymentMethod,
			string(registration.StatusPending), reg.PaymentProofPath)
		if err := row.Scan(&reg.CreatedAt); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		reg.Status = registration.StatusPending
		return nil
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return registration.ErrDuplicateRef
		}
		if errors.Is(err, registration.ErrSlotsFull) {
			return registration.ErrSlotsFull
		}
		return fmt.Errorf("InsertWithQuota failed: %w", err)
	}
	return nil
}

// BucketCounts is the slot-counter projection: only (category, gender) pairs
// leave the database.
func (p *Postgres) BucketCounts(ctx context.Context) (map[string]int, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT category, gender, count(*) FROM registrations GROUP BY category, gender`)
	if err != nil {
		return nil, fmt.Errorf("BucketCounts failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, 4)
	for rows.Next() {
		var cat, gen string
		var n int
		if err := rows.Scan(&cat, &gen, &n); err != nil {
			return nil, fmt.Errorf("BucketCounts failed: %w", err)
		}
		counts[registration.BucketKey(registration.Category(cat), registration.Gender(gen))] = n
	}
	return counts, rows.Err()
}

// RecentPublic is the athlete-wall projection: only the three fields the
// landing page shows ever leave the database.
func (p *Postgres) RecentPublic(ctx context.Context, limit int) ([]registration.WallEntry, error) {
	rows, err := p.pool.Query(ctx, `SELECT full_name, gym, category
		FROM registrations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentPublic failed: %w", err)
	}
	defer rows.Close()

	out := make([]registration.WallEntry, 0, limit)
	for rows.Next() {
		var e registration.WallEntry
		if err := rows.Scan(&e.FullName, &e.Gym, &e.Category); err != nil {
			return nil, fmt.Errorf("RecentPublic failed: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns every registration, newest first.
func (p *Postgres) List(ctx context.Context) ([]registration.Registration, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+registrationColumns+`
		FROM registrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("List failed: %w", err)
	}
	defer rows.Close()

	var out []registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("List failed: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// Get fetches one registration by internal id.
func (p *Postgres) Get(ctx context.Context, id string) (registration.Registration, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+registrationColumns+`
		FROM registrations WHERE id = $1`, id)
	reg, err := scanRegistration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return registration.Registration{}, registration.ErrNotFound
	}
	if err != nil {
		return registration.Registration{}, fmt.Errorf("Get failed: %w", err)
	}
	return reg, nil
}

// LatestByDocument backs the public status lookup: exact document match,
// most recent submission wins.
func (p *Postgres) LatestByDocument(ctx context.Context, documentID string) (registration.Registration, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+registrationColumns+`
		FROM registrations WHERE document_id = $1
		ORDER BY created_at DESC LIMIT 1`, documentID)
	reg, err := scanRegistration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return registration.Registration{}, registration.ErrNotFound
	}
	if err != nil {
		return registration.Registration{}, fmt.Errorf("LatestByDocument failed: %w", err)
	}
	return reg, nil
}

// UpdateStatus transitions a registration; notes == nil clears the stored
// rejection note (re-approval semantics).
func (p *Postgres) UpdateStatus(ctx context.Context, id string, status registration.Status, notes *string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE registrations SET status = $2, rejection_notes = $3 WHERE id = $1`,
		id, string(status), notes)
	if err != nil {
		return fmt.Errorf("UpdateStatus failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

// Delete removes the record; the caller is responsible for the proof file.
// This is the only operation that frees a slot in a bucket.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanRegistration(row pgx.Row) (registration.Registration, error) {
	var reg registration.Registration
	var cat, gen, status string
	var shirt, notes pgtype.Text

	err := row.Scan(&reg.ID, &reg.RegistrationID, &reg.FullName, &reg.DocumentID, &reg.Age,
		&reg.Phone, &reg.Email, &cat, &gen, &shirt, &reg.Gym,
		&reg.EmergencyName, &reg.EmergencyPhone, &reg.PaymentMethod,
		&status, &reg.PaymentProofPath, &notes, &reg.CreatedAt)
	if err != nil {
		return registration.Registration{}, err
	}

	reg.Category = registration.Category(cat)
	reg.Gender = registration.Gender(gen)
	reg.Status = registration.Status(status)
	if shirt.Status == pgtype.Present {
		reg.ShirtSize = shirt.String
	}
	if notes.Status == pgtype.Present {
		reg.RejectionNotes = notes.String
	}
	return reg, nil
}
