package users

import (
	"context"
	"database/sql"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]User, error) {
	const query = `
SELECT id, username, password, role, position, created_at
FROM users
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var (
			user      User
			role      string
			position  sql.NullString
			createdAt sql.NullInt64
		)
		if err := rows.Scan(&user.ID, &user.Username, &user.Password, &role, &position, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = Role(role)
		user.Position = position.String
		user.CreatedAt = createdAt.Int64
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Insert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, password, role, position, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		string(user.Role),
		nullableString(user.Position),
		nullableMillis(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Delete removes an account. The admin row is never removed.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if id == AdminID {
		return ErrAdminUndeletable
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableMillis(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
