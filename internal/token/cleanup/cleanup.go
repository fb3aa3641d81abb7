package cleanup

import (
	"context"
	"time"

	"github.com/ecomcore/tokens/internal/common/constants"
	"github.com/ecomcore/tokens/internal/common/logger"
	"github.com/ecomcore/tokens/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartRefreshTokenCleanup purges refresh tokens long past expiry.
// Revoked-but-unexpired rows are kept as audit history and are not
// touched here.
func StartRefreshTokenCleanup(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) {
	run(ctx, repo, log, constants.CleanupInterval)
}

func run(ctx context.Context, repo ExpiredDeleter, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Errorf("refresh token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.RefreshTokensCleanupDeleted.Add(float64(deleted))
				log.Infof("refresh token cleanup: deleted %d expired tokens", deleted)
			}
		}
	}
}
