package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Row status values reported before a repair.
const (
	DateNull = "NULL"
	DateZero = "ZERO"
	DateOK   = "OK"
)

// DatedRow is one users or positions row as seen by the date repair.
type DatedRow struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Name      string `json:"name,omitempty"`
	CreatedAt *int64 `json:"created_at"`
	Status    string `json:"status,omitempty"`
}

type Snapshot struct {
	Users     []DatedRow `json:"users"`
	Positions []DatedRow `json:"positions"`
}

// DateReport is the before/after view returned by a repair.
type DateReport struct {
	Message string   `json:"message"`
	Before  Snapshot `json:"before"`
	After   Snapshot `json:"after"`
}

// DateRepairer stamps missing or zero created_at values with the current
// time in milliseconds.
type DateRepairer struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r *DateRepairer) Repair(ctx context.Context) (DateReport, error) {
	before, err := r.snapshot(ctx, true)
	if err != nil {
		return DateReport{}, err
	}

	stamp := r.now().UnixMilli()
	for _, table := range []string{"users", "positions"} {
		query := fmt.Sprintf(`UPDATE %s SET created_at = $1 WHERE created_at IS NULL OR created_at = 0`, table)
		if _, err := r.DB.ExecContext(ctx, query, stamp); err != nil {
			return DateReport{}, fmt.Errorf("repair %s: %w", table, err)
		}
	}

	after, err := r.snapshot(ctx, false)
	if err != nil {
		return DateReport{}, err
	}
	return DateReport{Message: "Date fields checked and fixed", Before: before, After: after}, nil
}

func (r *DateRepairer) snapshot(ctx context.Context, withStatus bool) (Snapshot, error) {
	users, err := r.rows(ctx, `SELECT id, username, created_at FROM users`, withStatus,
		func(row *DatedRow, label string) { row.Username = label })
	if err != nil {
		return Snapshot{}, fmt.Errorf("read users: %w", err)
	}
	positions, err := r.rows(ctx, `SELECT id, name, created_at FROM positions`, withStatus,
		func(row *DatedRow, label string) { row.Name = label })
	if err != nil {
		return Snapshot{}, fmt.Errorf("read positions: %w", err)
	}
	return Snapshot{Users: users, Positions: positions}, nil
}

// rows reads (id, label, created_at) tuples.
func (r *DateRepairer) rows(ctx context.Context, query string, withStatus bool, setLabel func(*DatedRow, string)) ([]DatedRow, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DatedRow{}
	for rows.Next() {
		var (
			row       DatedRow
			label     sql.NullString
			createdAt sql.NullInt64
		)
		if err := rows.Scan(&row.ID, &label, &createdAt); err != nil {
			return nil, err
		}
		setLabel(&row, label.String)
		if createdAt.Valid {
			v := createdAt.Int64
			row.CreatedAt = &v
		}
		if withStatus {
			row.Status = dateStatus(createdAt)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func dateStatus(v sql.NullInt64) string {
	switch {
	case !v.Valid:
		return DateNull
	case v.Int64 == 0:
		return DateZero
	default:
		return DateOK
	}
}

func (r *DateRepairer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
