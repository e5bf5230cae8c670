package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoredRecord is a processed document record kept for export. Persistence is
// best-effort: a store failure never fails the request that produced the
// record.
type StoredRecord struct {
	ID               uuid.UUID
	Filename         string
	Date             string
	CounterpartyName string
	Amount           float64
	Category         string
	IsDeductible     bool
	DeductionType    string
	DeductionDetails string
	Description      string
	OCRText          string
	CreatedAt        time.Time
}

// RecordStore persists processed records.
type RecordStore interface {
	Insert(ctx context.Context, rec StoredRecord) error
	List(ctx context.Context, from, to *time.Time) ([]StoredRecord, error)
	Close() error
}

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(db *sql.DB) (*SQLiteRecordStore, error) {
	s := &SQLiteRecordStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRecordStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS records (
	id                TEXT PRIMARY KEY,
	filename          TEXT NOT NULL,
	record_date       TEXT NOT NULL,
	counterparty_name TEXT NOT NULL,
	amount            REAL NOT NULL,
	category          TEXT NOT NULL,
	is_deductible     INTEGER NOT NULL,
	deduction_type    TEXT NOT NULL,
	deduction_details TEXT NOT NULL,
	description       TEXT NOT NULL,
	ocr_text          TEXT NOT NULL,
	created_at        TEXT NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Insert(ctx context.Context, rec StoredRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO records(id, filename, record_date, counterparty_name, amount, category,
	is_deductible, deduction_type, deduction_details, description, ocr_text, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Filename, rec.Date, rec.CounterpartyName, rec.Amount, rec.Category,
		boolToInt(rec.IsDeductible), rec.DeductionType, rec.DeductionDetails, rec.Description,
		rec.OCRText, rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// List returns records whose normalized date falls in [from, to], inclusive.
// Records without a parseable date are included only when no window is given.
func (s *SQLiteRecordStore) List(ctx context.Context, from, to *time.Time) ([]StoredRecord, error) {
	query := `SELECT id, filename, record_date, counterparty_name, amount, category,
		is_deductible, deduction_type, deduction_details, description, ocr_text, created_at
		FROM records`
	var args []any
	switch {
	case from != nil && to != nil:
		query += ` WHERE record_date >= ? AND record_date <= ?`
		args = append(args, from.Format("2006-01-02"), to.Format("2006-01-02"))
	case from != nil:
		query += ` WHERE record_date >= ?`
		args = append(args, from.Format("2006-01-02"))
	case to != nil:
		query += ` WHERE record_date != '' AND record_date <= ?`
		args = append(args, to.Format("2006-01-02"))
	}
	query += ` ORDER BY record_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		var id, createdAt string
		var deductible int
		if err := rows.Scan(&id, &rec.Filename, &rec.Date, &rec.CounterpartyName, &rec.Amount,
			&rec.Category, &deductible, &rec.DeductionType, &rec.DeductionDetails,
			&rec.Description, &rec.OCRText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.ID, _ = uuid.Parse(id)
		rec.IsDeductible = deductible != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteRecordStore) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
