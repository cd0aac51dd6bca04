package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"figurinha-studio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create inserts the user and its customer profile in one transaction.
func (r *postgresRepo) Create(ctx context.Context, u domain.User, fullName string) (*domain.User, *domain.Profile, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	email := strings.ToLower(strings.TrimSpace(u.Email))
	var out domain.User
	err = tx.QueryRow(ctx, `
INSERT INTO users (email, password_hash)
VALUES ($1, $2)
RETURNING id::text, email, password_hash, email_confirmed_at, created_at
`, email, u.PasswordHash).Scan(&out.ID, &out.Email, &out.PasswordHash, &out.EmailConfirmedAt, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create email=%s error=%v", email, err)
		return nil, nil, err
	}

	var p domain.Profile
	err = tx.QueryRow(ctx, `
INSERT INTO profiles (id, email, full_name, role)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING id::text, email, COALESCE(full_name, ''), role, created_at, updated_at
`, out.ID, out.Email, strings.TrimSpace(fullName), domain.RoleCustomer).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Printf("user repo: create profile id=%s error=%v", out.ID, err)
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	r.logger.Printf("user repo: created id=%s", out.ID)
	return &out, &p, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id::text, email, password_hash, email_confirmed_at, created_at
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return scanUser(r.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT id::text, email, password_hash, email_confirmed_at, created_at
FROM users
WHERE id = $1
`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	const q = `
SELECT id::text, email, COALESCE(full_name, ''), role, created_at, updated_at
FROM profiles
WHERE id = $1
`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ConfirmEmail(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, now()) WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetRole(ctx context.Context, id, role string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE profiles SET role = $1, updated_at = now() WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: set role id=%s role=%s", id, role)
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmedAt, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
