// Package store persists corpus runs to SQLite, Postgres or MySQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/passage"
)

// Run summarizes a persisted corpus run.
type Run struct {
	ID          string    `json:"id"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Fingerprint string    `json:"fingerprint"`
	Documents   int       `json:"documents"`
	Failed      int       `json:"failed"`
}

// Store wraps *sql.DB with run persistence helpers.
type Store struct {
	db     *sql.DB
	driver string
	owned  bool
}

// New wraps an existing database handle.
func New(db *sql.DB, driver string) (*Store, error) {
	driver, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, driver: driver}, nil
}

// Open opens the database and creates the schema when missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if strings.TrimSpace(driver) == "" {
		driver, _ = DetectDriver(dsn)
	}
	driver, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("%v dsn required", driver)
	}
	if driver == DriverSQLite {
		dsn = EnsurePragmas(dsn, true, 5000)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, driver: driver, owned: true}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases an owned DB connection.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// EnsureSchema creates required tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS probe_runs (
            id VARCHAR(36) PRIMARY KEY,
            started_ms BIGINT NOT NULL,
            finished_ms BIGINT NOT NULL,
            fingerprint VARCHAR(255) NOT NULL,
            documents INTEGER NOT NULL,
            failed INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS probe_documents (
            run_id VARCHAR(36) NOT NULL,
            seq INTEGER NOT NULL,
            doc_id TEXT NOT NULL,
            status VARCHAR(16) NOT NULL,
            error TEXT,
            PRIMARY KEY (run_id, seq)
        )`,
		`CREATE TABLE IF NOT EXISTS probe_passages (
            run_id VARCHAR(36) NOT NULL,
            seq INTEGER NOT NULL,
            idx INTEGER NOT NULL,
            start_offset INTEGER NOT NULL,
            end_offset INTEGER NOT NULL,
            spans INTEGER NOT NULL,
            script VARCHAR(32),
            language VARCHAR(35),
            low_confidence INTEGER NOT NULL,
            boundary_disagreement INTEGER NOT NULL,
            model_failures INTEGER NOT NULL,
            profile TEXT NOT NULL,
            languages TEXT NOT NULL,
            content TEXT NOT NULL,
            PRIMARY KEY (run_id, seq, idx)
        )`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save persists a report under a new run id.
func (s *Store) Save(ctx context.Context, report *corpus.Report, fingerprint string) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Started:     report.Started,
		Finished:    report.Finished,
		Fingerprint: fingerprint,
		Documents:   len(report.Entries),
		Failed:      len(report.Failed()),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err = tx.ExecContext(ctx, s.bind(`INSERT INTO probe_runs(id, started_ms, finished_ms, fingerprint, documents, failed) VALUES(?,?,?,?,?,?)`),
		run.ID, run.Started.UnixMilli(), run.Finished.UnixMilli(), run.Fingerprint, run.Documents, run.Failed); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	for seq, entry := range report.Entries {
		if _, err = tx.ExecContext(ctx, s.bind(`INSERT INTO probe_documents(run_id, seq, doc_id, status, error) VALUES(?,?,?,?,?)`),
			run.ID, seq, entry.ID, string(entry.Status), entry.Error); err != nil {
			return nil, fmt.Errorf("failed to insert document %v: %w", entry.ID, err)
		}
		for idx := range entry.Passages {
			if err = s.insertPassage(ctx, tx, run.ID, seq, idx, &entry.Passages[idx]); err != nil {
				return nil, fmt.Errorf("failed to insert passage %v/%d: %w", entry.ID, idx, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) insertPassage(ctx context.Context, tx *sql.Tx, runID string, seq, idx int, p *passage.Passage) error {
	profile, err := json.Marshal(p.Profile)
	if err != nil {
		return err
	}
	languages, err := json.Marshal(p.Languages)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, s.bind(`INSERT INTO probe_passages(run_id, seq, idx, start_offset, end_offset, spans, script, language,
            low_confidence, boundary_disagreement, model_failures, profile, languages, content) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		runID, seq, idx, p.Start, p.End, p.Spans, p.Script, p.Language,
		boolInt(p.LowConfidence), boolInt(p.BoundaryDisagreement), p.ModelFailures,
		string(profile), string(languages), p.Text)
	return err
}

// ListRuns returns the most recent runs first; limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_ms, finished_ms, fingerprint, documents, failed FROM probe_runs ORDER BY started_ms DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *run)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var started, finished int64
	if err := row.Scan(&run.ID, &started, &finished, &run.Fingerprint, &run.Documents, &run.Failed); err != nil {
		return nil, err
	}
	run.Started = time.UnixMilli(started)
	run.Finished = time.UnixMilli(finished)
	return run, nil
}

// LoadRun restores a run and its report.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, *corpus.Report, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, s.bind(`SELECT id, started_ms, finished_ms, fingerprint, documents, failed FROM probe_runs WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, id)
		}
		return nil, nil, err
	}
	report := &corpus.Report{Started: run.Started, Finished: run.Finished}
	if err = s.loadDocuments(ctx, id, report); err != nil {
		return nil, nil, err
	}
	if err = s.loadPassages(ctx, id, report); err != nil {
		return nil, nil, err
	}
	return run, report, nil
}

func (s *Store) loadDocuments(ctx context.Context, id string, report *corpus.Report) error {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT doc_id, status, error FROM probe_documents WHERE run_id = ? ORDER BY seq`), id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		entry := &corpus.Entry{Passages: []passage.Passage{}}
		var status string
		var errText sql.NullString
		if err := rows.Scan(&entry.ID, &status, &errText); err != nil {
			return err
		}
		entry.Status = corpus.Status(status)
		entry.Error = errText.String
		report.Entries = append(report.Entries, entry)
	}
	return rows.Err()
}

func (s *Store) loadPassages(ctx context.Context, id string, report *corpus.Report) error {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT seq, start_offset, end_offset, spans, script, language, low_confidence,
            boundary_disagreement, model_failures, profile, languages, content FROM probe_passages WHERE run_id = ? ORDER BY seq, idx`), id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var seq, low, disagreement int
		var script, language sql.NullString
		var profile, languages string
		p := passage.Passage{}
		if err := rows.Scan(&seq, &p.Start, &p.End, &p.Spans, &script, &language, &low, &disagreement,
			&p.ModelFailures, &profile, &languages, &p.Text); err != nil {
			return err
		}
		if seq < 0 || seq >= len(report.Entries) {
			return fmt.Errorf("passage references unknown document %d", seq)
		}
		p.Script, p.Language = script.String, language.String
		p.LowConfidence, p.BoundaryDisagreement = low != 0, disagreement != 0
		if err := json.Unmarshal([]byte(profile), &p.Profile); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}
		if err := json.Unmarshal([]byte(languages), &p.Languages); err != nil {
			return fmt.Errorf("invalid languages: %w", err)
		}
		entry := report.Entries[seq]
		entry.Passages = append(entry.Passages, p)
	}
	return rows.Err()
}

func (s *Store) bind(query string) string {
	return rebind(s.driver, query)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
