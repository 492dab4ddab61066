package learning

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/medhold/dispute-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS case_records (
	id                      TEXT PRIMARY KEY,
	contradiction_types     TEXT NOT NULL,
	outcome                 TEXT NOT NULL,
	settlement_amount       REAL,
	time_to_resolution_days INTEGER NOT NULL DEFAULT 0,
	confidence_at_start     REAL NOT NULL DEFAULT 0,
	actual_outcome          REAL NOT NULL DEFAULT 0,
	recorded_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS success_rates (
	contradiction_type TEXT PRIMARY KEY,
	total_cases        INTEGER NOT NULL DEFAULT 0,
	successful_cases   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_case_records_outcome ON case_records(outcome);
CREATE INDEX IF NOT EXISTS idx_case_records_recorded_at ON case_records(recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Record(ctx context.Context, rec model.CaseLearningRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	typesJSON, err := json.Marshal(rec.ContradictionTypes)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal types")
	}

	// One transaction per record call: the log row and every counter bump
	// land together or not at all.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin record")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO case_records
		 (id, contradiction_types, outcome, settlement_amount, time_to_resolution_days, confidence_at_start, actual_outcome, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(typesJSON), string(rec.Outcome), rec.SettlementAmount,
		rec.TimeToResolutionDays, rec.ConfidenceAtStart, rec.ActualOutcome, rec.RecordedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert record %s", rec.ID)
	}

	successful := 0
	if rec.Outcome.Successful() {
		successful = 1
	}
	for _, t := range rec.ContradictionTypes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO success_rates (contradiction_type, total_cases, successful_cases) VALUES (?, 1, ?)
			 ON CONFLICT(contradiction_type) DO UPDATE SET
			   total_cases = total_cases + 1,
			   successful_cases = successful_cases + excluded.successful_cases`,
			t, successful,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: bump rate %s", t)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit record")
}

func (s *SQLiteStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	// A deferred read transaction pins one WAL snapshot for both queries.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin snapshot")
	}
	defer tx.Rollback()

	snap := &Snapshot{
		Rates:   make(model.SuccessRateTable),
		TakenAt: time.Now().UTC(),
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT contradiction_type, total_cases, successful_cases FROM success_rates`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot rates")
	}
	for rows.Next() {
		var t string
		var rate model.SuccessRate
		if err := rows.Scan(&t, &rate.TotalCases, &rate.SuccessfulCases); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "sqlite: scan rate")
		}
		snap.Rates[t] = rate
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, eris.Wrap(err, "sqlite: snapshot rates iterate")
	}
	rows.Close()

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM case_records`).Scan(&snap.Records); err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot count")
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT contradiction_types, settlement_amount FROM case_records WHERE settlement_amount IS NOT NULL`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot settlements")
	}
	defer rows.Close()
	for rows.Next() {
		var typesJSON string
		var sample SettlementSample
		if err := rows.Scan(&typesJSON, &sample.Amount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan settlement")
		}
		if err := json.Unmarshal([]byte(typesJSON), &sample.Types); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal types")
		}
		snap.Settlements = append(snap.Settlements, sample)
	}
	return snap, eris.Wrap(rows.Err(), "sqlite: snapshot settlements iterate")
}

func (s *SQLiteStore) History(ctx context.Context, filter Filter) ([]model.CaseLearningRecord, error) {
	query := `SELECT id, contradiction_types, outcome, settlement_amount, time_to_resolution_days, confidence_at_start, actual_outcome, recorded_at
	          FROM case_records WHERE 1=1`
	var args []any

	if filter.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, string(filter.Outcome))
	}
	if filter.Type != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(case_records.contradiction_types) WHERE json_each.value = ?)`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY recorded_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: history query")
	}
	defer rows.Close()

	var records []model.CaseLearningRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: history iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.CaseLearningRecord, error) {
	var rec model.CaseLearningRecord
	var typesJSON string
	var amount sql.NullFloat64

	err := row.Scan(&rec.ID, &typesJSON, &rec.Outcome, &amount,
		&rec.TimeToResolutionDays, &rec.ConfidenceAtStart, &rec.ActualOutcome, &rec.RecordedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan record")
	}

	if err := json.Unmarshal([]byte(typesJSON), &rec.ContradictionTypes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal types")
	}
	if amount.Valid {
		rec.SettlementAmount = &amount.Float64
	}
	return &rec, nil
}
