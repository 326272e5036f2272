package positions

import (
	"context"
	"database/sql"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Position, error) {
	const query = `
SELECT id, name, job_description, created_at
FROM positions
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	out := []Position{}
	for rows.Next() {
		var (
			p              Position
			jobDescription sql.NullString
			createdAt      sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &jobDescription, &createdAt); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		p.JobDescription = jobDescription.String
		p.CreatedAt = createdAt.Int64
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Insert(ctx context.Context, p Position) error {
	const query = `
INSERT INTO positions (id, name, job_description, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := r.DB.ExecContext(ctx, query, p.ID, p.Name, nullableString(p.JobDescription), p.CreatedAt); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// Update rewrites the name and job description only.
func (r *PGRepo) Update(ctx context.Context, p Position) error {
	const query = `
UPDATE positions
SET name = $2, job_description = $3
WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, p.ID, p.Name, nullableString(p.JobDescription)); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
