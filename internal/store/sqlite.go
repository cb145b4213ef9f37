package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timestampLayout is ISO-8601 with fixed-width milliseconds so that the
// stored strings sort lexicographically in time order.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore implements the Store interface over a single local database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create persists a new analysis, assigning its id and creation timestamp.
func (s *SQLiteStore) Create(ctx context.Context, a *Analysis) (int64, error) {
	a.CreatedAt = time.Now().UTC().Format(timestampLayout)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (created_at, text, word_count, credits, request_json, response_json,
		                       headline, prediction_short, fraction_ai, fraction_ai_assisted, fraction_human)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CreatedAt, a.Text, a.WordCount, a.Credits, a.RequestJSON, a.ResponseJSON,
		a.Headline, a.PredictionShort, a.FractionAI, a.FractionAIAssisted, a.FractionHuman)
	if err != nil {
		return 0, fmt.Errorf("create analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read new analysis id: %w", err)
	}
	a.ID = id
	return id, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (*Analysis, error) {
	var (
		a        Analysis
		headline sql.NullString
		short    sql.NullString
		ai       sql.NullFloat64
		assisted sql.NullFloat64
		human    sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, text, word_count, credits, request_json, response_json,
		        headline, prediction_short, fraction_ai, fraction_ai_assisted, fraction_human
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.CreatedAt, &a.Text, &a.WordCount, &a.Credits, &a.RequestJSON, &a.ResponseJSON,
		&headline, &short, &ai, &assisted, &human)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	a.Headline = headline.String
	a.PredictionShort = short.String
	a.FractionAI = ai.Float64
	a.FractionAIAssisted = assisted.Float64
	a.FractionHuman = human.Float64
	return &a, nil
}

// ListRecent returns up to limit analyses, newest first, each with a short
// text preview. Ids break timestamp ties since they are monotonic with time.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, word_count, headline, prediction_short, fraction_ai, substr(text, 1, 60)
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SearchByText returns up to limit analyses whose text contains query as a
// substring, newest first. Plain LIKE matching, no ranking.
func (s *SQLiteStore) SearchByText(ctx context.Context, query string, limit int) ([]AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, word_count, headline, prediction_short, fraction_ai, substr(text, 1, 80)
		 FROM analyses WHERE text LIKE ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search analyses: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// DeleteByID permanently removes an analysis. Reports whether a row existed.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) AggregateStats(ctx context.Context) (*Stats, error) {
	var (
		st    Stats
		first sql.NullString
		last  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(word_count), 0), MIN(created_at), MAX(created_at) FROM analyses`,
	).Scan(&st.TotalAnalyses, &st.TotalWords, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	st.FirstAnalysis = first.String
	st.LastAnalysis = last.String
	return &st, nil
}

// ListWordCounts returns the word count of every row. Credit totals are
// recomputed from these rather than summed in SQL, because the per-record
// floor rule does not distribute over a sum.
func (s *SQLiteStore) ListWordCounts(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word_count FROM analyses`)
	if err != nil {
		return nil, fmt.Errorf("list word counts: %w", err)
	}
	defer rows.Close()

	var counts []int
	for rows.Next() {
		var wc int
		if err := rows.Scan(&wc); err != nil {
			return nil, fmt.Errorf("scan word count: %w", err)
		}
		counts = append(counts, wc)
	}
	return counts, rows.Err()
}

// ListAll returns every analysis with full payloads, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, text, word_count, credits, request_json, response_json,
		        headline, prediction_short, fraction_ai, fraction_ai_assisted, fraction_human
		 FROM analyses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var (
			a        Analysis
			headline sql.NullString
			short    sql.NullString
			ai       sql.NullFloat64
			assisted sql.NullFloat64
			human    sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.Text, &a.WordCount, &a.Credits,
			&a.RequestJSON, &a.ResponseJSON,
			&headline, &short, &ai, &assisted, &human); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.Headline = headline.String
		a.PredictionShort = short.String
		a.FractionAI = ai.Float64
		a.FractionAIAssisted = assisted.Float64
		a.FractionHuman = human.Float64
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanSummaries(rows *sql.Rows) ([]AnalysisSummary, error) {
	var out []AnalysisSummary
	for rows.Next() {
		var (
			sum      AnalysisSummary
			headline sql.NullString
			short    sql.NullString
			ai       sql.NullFloat64
		)
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.WordCount, &headline, &short, &ai, &sum.Preview); err != nil {
			return nil, fmt.Errorf("scan analysis summary: %w", err)
		}
		sum.Headline = headline.String
		sum.PredictionShort = short.String
		sum.FractionAI = ai.Float64
		out = append(out, sum)
	}
	return out, rows.Err()
}
