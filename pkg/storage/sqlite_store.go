package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	_ "modernc.org/sqlite"
)

// Store wraps an embedded SQLite database holding the reward ledger: one row
// per farming run and one row per reward-bearing message. It uses
// modernc.org/sqlite for CGO-less builds.
//
// The ledger is history only. Session counters are never restored from it.
type Store struct {
	dbPath string
	db     *sql.DB
}

// NewStore creates a new Store pointing to dbPath. Call Init() before using it.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Init opens the SQLite database, configures pragmas, and ensures the schema exists.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	// Pragmas for durability and concurrency
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set synchronous: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Reward kinds. Totals.Orders counts KindOrder rows.
const (
	KindOrder    = "order_completed"
	KindDonation = "donation_receipt"
)

// RewardRecord is one reward-bearing message seen during a run.
type RewardRecord struct {
	RunID      string
	Kind       string
	MessageID  string
	Dish       string
	Rewards    rewards.Counters
	RecordedAt time.Time
}

// Totals aggregates reward rows.
type Totals struct {
	Rewards rewards.Counters
	Orders  int
	Rows    int
}

// StartRun registers a new farming run.
func (s *Store) StartRun(ctx context.Context, runID, channelID string, startedAt time.Time) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if runID == "" {
		return fmt.Errorf("run id is empty")
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, channel_id, started_at) VALUES (?, ?, ?)
         ON CONFLICT(run_id) DO NOTHING`,
		runID, channelID, startedAt.UTC(),
	)
	return err
}

// FinishRun stamps the run's end time.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at=? WHERE run_id=?`, finishedAt.UTC(), runID)
	return err
}

// RecordReward appends a ledger row.
func (s *Store) RecordReward(ctx context.Context, r RewardRecord) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if r.RunID == "" || r.Kind == "" {
		return fmt.Errorf("reward record needs run id and kind")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reward_events (run_id, kind, message_id, dish, coins, shards, redeems, events, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Kind, r.MessageID, r.Dish,
		r.Rewards.Coins, r.Rewards.Shards, r.Rewards.Redeems, r.Rewards.Events,
		r.RecordedAt.UTC(),
	)
	return err
}

// RunTotals sums the ledger for one run.
func (s *Store) RunTotals(ctx context.Context, runID string) (Totals, error) {
	return s.totals(ctx, `WHERE run_id=?`, runID)
}

// LifetimeTotals sums the whole ledger.
func (s *Store) LifetimeTotals(ctx context.Context) (Totals, error) {
	return s.totals(ctx, ``)
}

func (s *Store) totals(ctx context.Context, where string, args ...any) (Totals, error) {
	if s.db == nil {
		return Totals{}, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(coins),0), COALESCE(SUM(shards),0), COALESCE(SUM(redeems),0), COALESCE(SUM(events),0),
                COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END),0), COUNT(*)
         FROM reward_events `+where,
		append([]any{KindOrder}, args...)...,
	)
	var t Totals
	if err := row.Scan(&t.Rewards.Coins, &t.Rewards.Shards, &t.Rewards.Redeems, &t.Rewards.Events, &t.Orders, &t.Rows); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// SetMeta records a timestamp under key (e.g. "last_started").
func (s *Store) SetMeta(key string, t time.Time) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO runtime_meta (key, ts) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET ts=excluded.ts`,
		key, t.UTC(),
	)
	return err
}

// GetMeta returns the timestamp stored under key, if any.
func (s *Store) GetMeta(key string) (time.Time, bool, error) {
	if s.db == nil {
		return time.Time{}, false, fmt.Errorf("store not initialized")
	}
	row := s.db.QueryRow(`SELECT ts FROM runtime_meta WHERE key=?`, key)
	var ts time.Time
	if err := row.Scan(&ts); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// ensureSchema creates required tables and indexes if they don't exist.
func ensureSchema(db *sql.DB) error {
	const createRuns = `
CREATE TABLE IF NOT EXISTS runs (
  run_id      TEXT PRIMARY KEY,
  channel_id  TEXT NOT NULL,
  started_at  TIMESTAMP NOT NULL,
  finished_at TIMESTAMP
);`

	const createRewardEvents = `
CREATE TABLE IF NOT EXISTS reward_events (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id      TEXT NOT NULL,
  kind        TEXT NOT NULL,
  message_id  TEXT,
  dish        TEXT NOT NULL DEFAULT '',
  coins       INTEGER NOT NULL DEFAULT 0,
  shards      INTEGER NOT NULL DEFAULT 0,
  redeems     INTEGER NOT NULL DEFAULT 0,
  events      INTEGER NOT NULL DEFAULT 0,
  recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reward_events_run ON reward_events(run_id);`

	const createRuntimeMeta = `
CREATE TABLE IF NOT EXISTS runtime_meta (
  key TEXT PRIMARY KEY,
  ts  TIMESTAMP NOT NULL
);`

	stmts := []string{
		createRuns,
		createRewardEvents,
		createRuntimeMeta,
	}
	for _, sqlText := range stmts {
		if _, err := db.Exec(sqlText); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
