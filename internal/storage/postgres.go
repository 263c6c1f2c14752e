package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"trashvision/internal/domain"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Save(ctx context.Context, c domain.Classification) error {
	query := `
		INSERT INTO classifications (id, label, confidence, recyclable, iteration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query,
		c.ID,
		c.Label,
		c.Confidence,
		c.Recyclable,
		c.Iteration,
		c.CreatedAt,
	)

	return err
}

func (p *Postgres) FindRecent(ctx context.Context, limit int) ([]domain.Classification, error) {
	query := `
		SELECT id, label, confidence, recyclable, iteration, created_at
		FROM classifications ORDER BY created_at DESC LIMIT $1
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Classification
	for rows.Next() {
		var c domain.Classification
		if err := rows.Scan(
			&c.ID,
			&c.Label,
			&c.Confidence,
			&c.Recyclable,
			&c.Iteration,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, c)
	}

	return records, rows.Err()
}

func (p *Postgres) GetStats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE recyclable),
			COUNT(*) FILTER (WHERE NOT recyclable AND label <> 'unknown'),
			COUNT(*) FILTER (WHERE label = 'unknown')
		FROM classifications
	`

	var s Stats
	err := p.db.QueryRowContext(ctx, query).Scan(&s.Total, &s.Recyclable, &s.Nonrecyclable, &s.Unknown)
	return s, err
}
