package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
)

// Pool is the narrow pgx surface the store uses. *pgxpool.Pool satisfies
// it, as does pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_record": `INSERT INTO case_records
		(id, contradiction_types, outcome, settlement_amount, time_to_resolution_days, confidence_at_start, actual_outcome, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"bump_rate": `INSERT INTO success_rates (contradiction_type, total_cases, successful_cases) VALUES ($1, 1, $2)
		ON CONFLICT (contradiction_type) DO UPDATE SET
		  total_cases = success_rates.total_cases + 1,
		  successful_cases = success_rates.successful_cases + EXCLUDED.successful_cases`,
	"select_rates": `SELECT contradiction_type, total_cases, successful_cases FROM success_rates`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS case_records (
	id                      TEXT PRIMARY KEY,
	contradiction_types     JSONB NOT NULL,
	outcome                 TEXT NOT NULL,
	settlement_amount       DOUBLE PRECISION,
	time_to_resolution_days INTEGER NOT NULL DEFAULT 0,
	confidence_at_start     DOUBLE PRECISION NOT NULL DEFAULT 0,
	actual_outcome          DOUBLE PRECISION NOT NULL DEFAULT 0,
	recorded_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS success_rates (
	contradiction_type TEXT PRIMARY KEY,
	total_cases        INTEGER NOT NULL DEFAULT 0,
	successful_cases   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_case_records_outcome ON case_records(outcome);
CREATE INDEX IF NOT EXISTS idx_case_records_recorded_at ON case_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_case_records_types ON case_records USING gin (contradiction_types);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, rec model.CaseLearningRecord) error {
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
		return eris.Wrap(err, "postgres: marshal types")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin record")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO case_records
		 (id, contradiction_types, outcome, settlement_amount, time_to_resolution_days, confidence_at_start, actual_outcome, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, typesJSON, string(rec.Outcome), rec.SettlementAmount,
		rec.TimeToResolutionDays, rec.ConfidenceAtStart, rec.ActualOutcome, rec.RecordedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert record %s", rec.ID)
	}

	successful := 0
	if rec.Outcome.Successful() {
		successful = 1
	}
	for _, t := range rec.ContradictionTypes {
		_, err = tx.Exec(ctx,
			`INSERT INTO success_rates (contradiction_type, total_cases, successful_cases) VALUES ($1, 1, $2)
			 ON CONFLICT (contradiction_type) DO UPDATE SET
			   total_cases = success_rates.total_cases + 1,
			   successful_cases = success_rates.successful_cases + EXCLUDED.successful_cases`,
			t, successful,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: bump rate %s", t)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit record")
}

func (s *PostgresStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin snapshot")
	}
	defer tx.Rollback(ctx)

	// Repeatable read pins one MVCC snapshot across all three queries, so a
	// record committing mid-snapshot is either fully visible or not at all.
	if _, err := tx.Exec(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY`); err != nil {
		return nil, eris.Wrap(err, "postgres: set snapshot isolation")
	}

	snap := &Snapshot{
		Rates:   make(model.SuccessRateTable),
		TakenAt: time.Now().UTC(),
	}

	rows, err := tx.Query(ctx, `SELECT contradiction_type, total_cases, successful_cases FROM success_rates`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: snapshot rates")
	}
	for rows.Next() {
		var t string
		var rate model.SuccessRate
		if err := rows.Scan(&t, &rate.TotalCases, &rate.SuccessfulCases); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "postgres: scan rate")
		}
		snap.Rates[t] = rate
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, eris.Wrap(err, "postgres: snapshot rates iterate")
	}
	rows.Close()

	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM case_records`).Scan(&snap.Records); err != nil {
		return nil, eris.Wrap(err, "postgres: snapshot count")
	}

	rows, err = tx.Query(ctx,
		`SELECT contradiction_types, settlement_amount FROM case_records WHERE settlement_amount IS NOT NULL`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: snapshot settlements")
	}
	defer rows.Close()
	for rows.Next() {
		var typesJSON []byte
		var sample SettlementSample
		if err := rows.Scan(&typesJSON, &sample.Amount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan settlement")
		}
		if err := json.Unmarshal(typesJSON, &sample.Types); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal types")
		}
		snap.Settlements = append(snap.Settlements, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: snapshot settlements iterate")
	}

	return snap, eris.Wrap(tx.Commit(ctx), "postgres: commit snapshot")
}

func (s *PostgresStore) History(ctx context.Context, filter Filter) ([]model.CaseLearningRecord, error) {
	query := `SELECT id, contradiction_types, outcome, settlement_amount, time_to_resolution_days, confidence_at_start, actual_outcome, recorded_at
	          FROM case_records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Outcome != "" {
		query += fmt.Sprintf(` AND outcome = $%d`, argIdx)
		args = append(args, string(filter.Outcome))
		argIdx++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(` AND contradiction_types ? $%d`, argIdx)
		args = append(args, filter.Type)
		argIdx++
	}
	query += ` ORDER BY recorded_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: history query")
	}
	defer rows.Close()

	var records []model.CaseLearningRecord
	for rows.Next() {
		var rec model.CaseLearningRecord
		var typesJSON []byte
		var amount *float64

		if err := rows.Scan(&rec.ID, &typesJSON, &rec.Outcome, &amount,
			&rec.TimeToResolutionDays, &rec.ConfidenceAtStart, &rec.ActualOutcome, &rec.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if err := json.Unmarshal(typesJSON, &rec.ContradictionTypes); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal types")
		}
		rec.SettlementAmount = amount
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: history iterate")
}
