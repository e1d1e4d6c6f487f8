package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/notflix/internal/domain"
)

const uniqueViolation = "23505"

// UsersRepository stores registered accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `username, first_name, infix, last_name, password_hash, password_salt`

// Create inserts a user. A taken username yields a Conflict error.
func (r *UsersRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
        INSERT INTO users (username, first_name, infix, last_name, password_hash, password_salt)
        VALUES ($1,$2,$3,$4,$5,$6)
    `
	_, err := r.pool.Exec(ctx, query, user.Username, user.FirstName, user.Infix, user.LastName, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Conflict("Username occupied.")
		}
		return fmt.Errorf("insert user %s: %w", user.Username, err)
	}
	return nil
}

// Get fetches one user, secrets included; callers decide what to expose.
func (r *UsersRepository) Get(ctx context.Context, username string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns users ordered by username.
func (r *UsersRepository) List(ctx context.Context, page domain.Page) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY username LIMIT $1 OFFSET $2`, userColumns)
	rows, err := r.pool.Query(ctx, query, limitArg(page), page.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.Username,
		&user.FirstName,
		&user.Infix,
		&user.LastName,
		&user.PasswordHash,
		&user.PasswordSalt,
	)
	return user, err
}
