package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecomcore/tokens/internal/common/clock"
	"github.com/ecomcore/tokens/internal/common/config"
	commoncrypto "github.com/ecomcore/tokens/internal/common/crypto"
	"github.com/ecomcore/tokens/internal/common/db"
	commonhttp "github.com/ecomcore/tokens/internal/common/http"
	"github.com/ecomcore/tokens/internal/common/logger"
	srv "github.com/ecomcore/tokens/internal/common/server"
	"github.com/ecomcore/tokens/internal/token/cleanup"
	tokenhttp "github.com/ecomcore/tokens/internal/token/http"
	tokenrepo "github.com/ecomcore/tokens/internal/token/repository"
	"github.com/ecomcore/tokens/internal/token/service"
	userrepo "github.com/ecomcore/tokens/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "tokens", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := db.NewPool(ctx, log, cfg.DatabaseURL)
	defer pool.Close()

	userRepo := userrepo.NewPgRepository(pool)
	refreshTokenRepo := tokenrepo.NewPgRefreshTokenRepository(pool, log)

	utcClock := clock.NewUTCClock()
	idGenerator := commoncrypto.NewUUIDGenerator()
	dbCircuitBreaker := db.NewCircuitBreaker(
		cfg.CircuitBreakerThreshold,
		cfg.CircuitBreakerTimeout,
		cfg.CircuitBreakerReset,
		log,
	)

	claimsBuilder := service.NewClaimsBuilder(userRepo)
	tokenIssuer := service.NewAccessTokenIssuer(
		cfg.SigningKey,
		cfg.Issuer,
		cfg.Audience,
		cfg.AccessTokenLifetime(),
		utcClock,
	)
	rotator := service.NewRefreshTokenRotator(
		refreshTokenRepo,
		dbCircuitBreaker,
		idGenerator,
		cfg.RefreshTokenLifetime(),
		utcClock,
		log,
	)
	tokenService := service.NewTokenService(claimsBuilder, tokenIssuer, rotator, log)

	go cleanup.StartRefreshTokenCleanup(ctx, refreshTokenRepo, log)

	handler := tokenhttp.NewHandler(tokenService, userRepo, cfg.SigningKey, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	finalHandler := commonhttp.BuildBaseHandler(log, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("tokens service: stopping background workers")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "tokens", shutdownHooks)
}
