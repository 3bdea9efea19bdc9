// Package user manages user accounts and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when an email is already registered.
var ErrAlreadyExists = errors.New("user already exists")

const userColumns = `id, name, email, phone_number, open_network, cep, birthday, biography, url_picture, created_at, updated_at`

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns all users ordered by id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetByID fetches a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	u := &User{}
	err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id), u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email), u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Create inserts a new user and returns the stored record.
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	created := &User{}
	err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, phone_number, open_network, cep, birthday, biography, url_picture)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		u.Name, u.Email, u.PhoneNumber, u.OpenNetwork, u.CEP, u.Birthday.Time, u.Biography, u.URLPicture,
	), created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Update replaces the full record for u.ID and returns the stored record.
// The id is taken from u.ID only; it is never rewritten.
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	updated := &User{}
	err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, email = $3, phone_number = $4, open_network = $5,
		     cep = $6, birthday = $7, biography = $8, url_picture = $9,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PhoneNumber, u.OpenNetwork, u.CEP, u.Birthday.Time, u.Biography, u.URLPicture,
	), updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes a user by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanUser reads one row in userColumns order.
func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.OpenNetwork,
		&u.CEP, &u.Birthday.Time, &u.Biography, &u.URLPicture,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
