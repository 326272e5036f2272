package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Record, error) {
	const query = `
SELECT id, timestamp, position_name, job_description, special_requirements, results, assigned_to, created_by
FROM history_records
ORDER BY timestamp DESC
LIMIT 50`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec                 Record
			positionName        sql.NullString
			jobDescription      sql.NullString
			specialRequirements sql.NullString
			results             []byte
			assignedTo          sql.NullString
			createdBy           sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &positionName, &jobDescription, &specialRequirements, &results, &assignedTo, &createdBy); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.PositionName = positionName.String
		rec.JobDescription = jobDescription.String
		rec.SpecialRequirements = specialRequirements.String
		rec.AssignedTo = assignedTo.String
		rec.CreatedBy = createdBy.String
		rec.Results = []Entry{}
		if len(results) > 0 {
			if err := json.Unmarshal(results, &rec.Results); err != nil {
				return nil, fmt.Errorf("decode results for %s: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Insert(ctx context.Context, rec Record) error {
	results := rec.Results
	if results == nil {
		results = []Entry{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	const query = `
INSERT INTO history_records (
  id, timestamp, position_name, job_description,
  special_requirements, results, assigned_to, created_by
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp,
		rec.PositionName,
		rec.JobDescription,
		rec.SpecialRequirements,
		string(payload),
		nullableString(rec.AssignedTo),
		nullableString(rec.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Assign changes the assignee only.
func (r *PGRepo) Assign(ctx context.Context, id, assignedTo string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE history_records SET assigned_to = $2 WHERE id = $1`, id, nullableString(assignedTo)); err != nil {
		return fmt.Errorf("assign history: %w", err)
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM history_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
