// Package store persists the session credential and generation history in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/promptg/internal"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

const credentialKey = "groq_api_key"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		selection TEXT NOT NULL,
		base_prompt TEXT NOT NULL,
		search_key TEXT NOT NULL,
		enhanced_prompt TEXT NOT NULL,
		advisory TEXT,
		model TEXT,
		latency_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now())
	return err
}

// GetSetting returns the value for key and whether it was present.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// SaveCredential persists the API credential.
func (s *Store) SaveCredential(ctx context.Context, credential string) error {
	return s.SetSetting(ctx, credentialKey, credential)
}

// LoadCredential returns the persisted credential, if any.
func (s *Store) LoadCredential(ctx context.Context) (string, bool, error) {
	return s.GetSetting(ctx, credentialKey)
}

// ClearCredential removes the persisted credential.
func (s *Store) ClearCredential(ctx context.Context) error {
	return s.DeleteSetting(ctx, credentialKey)
}

// SaveGeneration records a completed generate action.
func (s *Store) SaveGeneration(ctx context.Context, rec internal.GenerationRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, mode, selection, base_prompt, search_key, enhanced_prompt, advisory, model, latency_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode, rec.Selection, rec.BasePrompt, searchKey(rec.BasePrompt+"\n"+rec.EnhancedPrompt),
		rec.EnhancedPrompt, rec.Advisory, rec.Model, rec.LatencyMs, rec.Timestamp)
	return err
}

const generationColumns = `id, mode, selection, base_prompt, enhanced_prompt, COALESCE(advisory, ''), COALESCE(model, ''), COALESCE(latency_ms, 0), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (internal.GenerationRecord, error) {
	var rec internal.GenerationRecord
	err := row.Scan(&rec.ID, &rec.Mode, &rec.Selection, &rec.BasePrompt, &rec.EnhancedPrompt,
		&rec.Advisory, &rec.Model, &rec.LatencyMs, &rec.Timestamp)
	return rec, err
}

// GetGeneration returns a single record by ID.
func (s *Store) GetGeneration(ctx context.Context, id string) (*internal.GenerationRecord, error) {
	rec, err := scanGeneration(s.db.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListGenerations returns the newest records first. limit <= 0 means no limit.
func (s *Store) ListGenerations(ctx context.Context, limit int) ([]internal.GenerationRecord, error) {
	return s.queryGenerations(ctx,
		`SELECT `+generationColumns+` FROM generations ORDER BY created_at DESC, id LIMIT ?`,
		sqlLimit(limit))
}

// SearchGenerations returns records whose base or enhanced prompt contains
// query, ignoring case and Unicode normalisation differences.
func (s *Store) SearchGenerations(ctx context.Context, query string, limit int) ([]internal.GenerationRecord, error) {
	pattern := "%" + escapeLike(searchKey(query)) + "%"
	return s.queryGenerations(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE search_key LIKE ? ESCAPE '\' ORDER BY created_at DESC, id LIMIT ?`,
		pattern, sqlLimit(limit))
}

func (s *Store) queryGenerations(ctx context.Context, query string, args ...any) ([]internal.GenerationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []internal.GenerationRecord{}
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// DeleteGeneration permanently removes a record by ID.
func (s *Store) DeleteGeneration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearGenerations removes all history and returns how many rows went.
func (s *Store) ClearGenerations(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HistoryStats summarises generation history.
type HistoryStats struct {
	Total      int `json:"total"`
	Images     int `json:"images"`
	Videos     int `json:"videos"`
	NonEnglish int `json:"non_english"`
}

func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN mode = 'image' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN mode = 'video' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN advisory IS NOT NULL AND advisory != '' THEN 1 ELSE 0 END), 0)
		FROM generations`).Scan(
		&stats.Total,
		&stats.Images,
		&stats.Videos,
		&stats.NonEnglish,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// searchKey trims, applies Unicode NFC normalisation and case folding so
// lookups match regardless of how the text was typed.
func searchKey(text string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(text)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SQLite treats a negative LIMIT as unbounded.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
