package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadcheck/inspecthub/internal/domain/user"
	"github.com/roadcheck/inspecthub/internal/observability"
)

const uniqueViolation = "23505"

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

// Create inserts a new user row. The username uniqueness constraint in
// the store arbitrates concurrent registrations; the loser surfaces as
// ErrUsernameTaken.
func (r *UsersRepo) Create(ctx context.Context, username, passwordHash string) (user.User, error) {
	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := observe(r.metrics, "users.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO users(id, username, password_hash, created_at) VALUES($1, $2, $3, $4)`,
			u.ID, u.Username, u.PasswordHash, u.CreatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, user.ErrUsernameTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := observe(r.metrics, "users.get_by_username", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, password_hash, created_at
			 FROM users
			 WHERE username = $1`,
			username,
		).Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := observe(r.metrics, "users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, password_hash, created_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// observe routes the query through DB metrics when they are wired.
func observe(m *observability.Prom, op string, fn func() error) error {
	if m == nil {
		return fn()
	}

	return m.ObserveDB(op, fn)
}
