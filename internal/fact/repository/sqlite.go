package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/factdeck/factdeck/internal/fact"
	"github.com/google/uuid"
)

// SQLiteRepo implements Repository on a SQLite database. Timestamps are
// stored as unix nanoseconds; last_shown is NULL until the first serve.
type SQLiteRepo struct {
	db *sql.DB
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_shown INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_facts_category_shown ON facts(category, last_shown)`,
}

var factColumns = []string{"id", "category", "content", "created_at", "last_shown"}

// NewSQLiteRepo wraps db and applies the schema.
func NewSQLiteRepo(ctx context.Context, db *sql.DB) (*SQLiteRepo, error) {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate facts: %w", err)
		}
	}
	return &SQLiteRepo{db: db}, nil
}

func withCategory(b sq.SelectBuilder, category string) sq.SelectBuilder {
	if category == "" {
		return b
	}
	return b.Where(sq.Eq{"category": category})
}

func (r *SQLiteRepo) SampleEligible(ctx context.Context, category string, notShownSince time.Time, limit int) ([]*fact.Fact, error) {
	if limit <= 0 {
		return []*fact.Fact{}, nil
	}
	q := withCategory(sq.Select(factColumns...).From("facts"), category).
		Where(sq.Or{sq.Eq{"last_shown": nil}, sq.Lt{"last_shown": notShownSince.UnixNano()}}).
		OrderBy("RANDOM()").
		Limit(uint64(limit))
	return r.query(ctx, q)
}

func (r *SQLiteRepo) SampleAny(ctx context.Context, category string, limit int) ([]*fact.Fact, error) {
	if limit <= 0 {
		return []*fact.Fact{}, nil
	}
	q := withCategory(sq.Select(factColumns...).From("facts"), category).
		OrderBy("RANDOM()").
		Limit(uint64(limit))
	return r.query(ctx, q)
}

func (r *SQLiteRepo) List(ctx context.Context, category string) ([]*fact.Fact, error) {
	q := withCategory(sq.Select(factColumns...).From("facts"), category).OrderBy("created_at")
	return r.query(ctx, q)
}

func (r *SQLiteRepo) Contents(ctx context.Context, category string) ([]string, error) {
	query, args, err := withCategory(sq.Select("content").From("facts"), category).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contents: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Create(ctx context.Context, f *fact.Fact) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	var shown interface{}
	if f.LastShown != nil {
		shown = f.LastShown.UnixNano()
	}
	query, args, err := sq.Insert("facts").Columns(factColumns...).
		Values(f.ID, f.Category, f.Content, f.CreatedAt.UnixNano(), shown).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fact: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) MarkShown(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sq.Update("facts").Set("last_shown", at.UnixNano()).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark shown: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) query(ctx context.Context, b sq.SelectBuilder) ([]*fact.Fact, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	out := []*fact.Fact{}
	for rows.Next() {
		var (
			f       fact.Fact
			created int64
			shown   sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.Category, &f.Content, &created, &shown); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.CreatedAt = time.Unix(0, created).UTC()
		if shown.Valid {
			t := time.Unix(0, shown.Int64).UTC()
			f.LastShown = &t
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
