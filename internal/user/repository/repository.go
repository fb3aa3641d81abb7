package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ecomcore/tokens/internal/common/db"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
	userdomain "github.com/ecomcore/tokens/internal/user/domain"
)

var ErrUserNotFound = pgx.ErrNoRows

// Repository is the read-only view of the user/role store the token
// service depends on.
type Repository interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	GetClaims(ctx context.Context, id userdomain.ID) ([]tokendomain.Claim, error)
	GetRoles(ctx context.Context, id userdomain.ID) ([]string, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, email, created_at
		 FROM users
		 WHERE id = $1`,
		string(id),
	)

	var user userdomain.User
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return userdomain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) GetClaims(ctx context.Context, id userdomain.ID) ([]tokendomain.Claim, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT claim_type, claim_value
		 FROM user_claims
		 WHERE user_id = $1
		 ORDER BY id`,
		string(id),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "get user claims", start)
	}
	defer rows.Close()

	var claims []tokendomain.Claim
	for rows.Next() {
		var c tokendomain.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan user claims", start)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "get user claims", start)
	}

	db.MeasureQueryDuration("get user claims", start)
	return claims, nil
}

func (r *PgRepository) GetRoles(ctx context.Context, id userdomain.ID) ([]string, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT r.name
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY ur.id`,
		string(id),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "get user roles", start)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan user roles", start)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "get user roles", start)
	}

	db.MeasureQueryDuration("get user roles", start)
	return roles, nil
}
