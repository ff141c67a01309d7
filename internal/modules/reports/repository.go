// Package reports persists screening and rebalance run records to SQLite
// for later inspection over the API.
package reports

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Report kinds.
const (
	KindScreening = "screening"
	KindRebalance = "rebalance"
	KindAnalysis  = "analysis"
)

// defaultListLimit bounds unpaged listings.
const defaultListLimit = 50

// Meta is the listing view of a stored report.
type Meta struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// Report is a stored run record with its full payload.
type Report struct {
	Meta
	Payload json.RawMessage `json:"payload"`
}

// Repository stores run reports. Payloads are serialized JSON; the schema
// stays stable as report shapes evolve.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a report repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "reports").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, fmt.Errorf("reports schema: %w", err)
	}
	return r, nil
}

// Open opens the SQLite database at path with sane defaults for a single
// writer process.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open reports db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (r *Repository) ensureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			summary TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_kind_created
			ON reports (kind, created_at DESC);
	`)
	return err
}

// Save stores a run record. payload is serialized to JSON.
func (r *Repository) Save(id, kind, summary string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO reports (id, kind, summary, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, kind, summary, string(body), time.Now())
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	r.log.Debug().Str("id", id).Str("kind", kind).Msg("Report saved")
	return nil
}

// List returns report metadata, newest first. An empty kind lists all
// kinds; limit <= 0 applies the default.
func (r *Repository) List(kind string, limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, kind, summary, created_at FROM reports`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Kind, &m.Summary, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Get returns one stored report by id.
func (r *Repository) Get(id string) (*Report, error) {
	var (
		report  Report
		payload string
	)
	err := r.db.QueryRow(`
		SELECT id, kind, summary, payload, created_at FROM reports WHERE id = ?
	`, id).Scan(&report.ID, &report.Kind, &report.Summary, &payload, &report.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, domain.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	report.Payload = json.RawMessage(payload)
	return &report, nil
}
