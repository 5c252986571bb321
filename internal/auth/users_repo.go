package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

var _ Users = (*UsersRepo)(nil)

type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{
		db: db,
	}
}

const selectUser = `SELECT id, username, password_hash, is_admin, created_at FROM app_user`

func (r *UsersRepo) Create(ctx context.Context, u *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, `
		INSERT INTO app_user (id, username, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5);`,
		u.ID, u.Username, u.PasswordHash, u.Admin, u.CreatedAt,
	)
	if pkg.IsUniqueViolationError(err) {
		return apperr.Conflict("create user", "username %q is taken", u.Username)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UsersRepo) one(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, selectUser+" WHERE "+where+";", arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Admin, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get user", "user")
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (r *UsersRepo) ByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.byusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return r.one(ctx, "lower(username) = lower($1)", username)
}

func (r *UsersRepo) Get(ctx context.Context, id uuid.UUID) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return r.one(ctx, "id = $1", id)
}

func (r *UsersRepo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectUser+" ORDER BY username;")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		var u User
		err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Admin, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}
	return users, nil
}
