package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ecomcore/tokens/internal/common/db"
	"github.com/ecomcore/tokens/internal/common/logger"
	tokendomain "github.com/ecomcore/tokens/internal/token/domain"
)

var ErrRefreshTokenNotFound = pgx.ErrNoRows

// RefreshTokenRepository persists refresh tokens. Rotation never deletes
// rows; Revoke stamps revoked_at and modified_at so the history stays
// queryable. DeleteExpired is reserved for the background cleanup job,
// which only purges rows long past their expiry.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token tokendomain.RefreshToken) error
	FindActiveByUserID(ctx context.Context, userID string) (tokendomain.RefreshToken, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PgRefreshTokenRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRefreshTokenRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRefreshTokenRepository {
	return &PgRefreshTokenRepository{pool: pool, log: log}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token tokendomain.RefreshToken) error {
	start := time.Now()
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO refresh_tokens (id, user_id, token, created_at, modified_at, expires_at, revoked_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			token.ID,
			token.UserID,
			token.Token,
			token.CreatedAt,
			token.ModifiedAt,
			token.ExpiresAt,
			token.RevokedAt,
		)
		return err
	})
	return db.HandleExecError(err, "create refresh token", start)
}

func (r *PgRefreshTokenRepository) FindActiveByUserID(ctx context.Context, userID string) (tokendomain.RefreshToken, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, user_id, token, created_at, modified_at, expires_at, revoked_at
		 FROM refresh_tokens
		 WHERE user_id = $1
		   AND revoked_at IS NULL
		   AND expires_at > NOW()`,
		userID,
	)

	var token tokendomain.RefreshToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.CreatedAt,
		&token.ModifiedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
	)
	if err := db.HandleQueryError(err, ErrRefreshTokenNotFound, "find active refresh token", start); err != nil {
		return tokendomain.RefreshToken{}, err
	}
	return token, nil
}

func (r *PgRefreshTokenRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	start := time.Now()
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		_, err := r.pool.Exec(
			ctx,
			`UPDATE refresh_tokens
			 SET revoked_at = $2, modified_at = $2
			 WHERE id = $1`,
			id,
			at,
		)
		return err
	})
	return db.HandleExecError(err, "revoke refresh token", start)
}

func (r *PgRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < NOW() - INTERVAL '30 days'`,
	)
	if err != nil {
		return 0, db.HandleExecError(err, "delete expired refresh tokens", start)
	}
	db.MeasureQueryDuration("delete expired refresh tokens", start)
	return res.RowsAffected(), nil
}
