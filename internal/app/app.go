package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fotisolgr/my-bet-app/internal/config"
	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/fotisolgr/my-bet-app/internal/infrastructure/account/keycloak"
	cacherepo "github.com/fotisolgr/my-bet-app/internal/infrastructure/repository/cache"
	"github.com/fotisolgr/my-bet-app/internal/infrastructure/repository/memory"
	"github.com/fotisolgr/my-bet-app/internal/infrastructure/repository/postgres"
	"github.com/fotisolgr/my-bet-app/internal/interfaces/httpapi"
	"github.com/fotisolgr/my-bet-app/internal/platform/cache"
	idgen "github.com/fotisolgr/my-bet-app/internal/platform/id"
	"github.com/fotisolgr/my-bet-app/internal/platform/logging"
	"github.com/fotisolgr/my-bet-app/internal/usecase"
)

const matchCacheMaxEntries = 1000

// NewHTTPServer assembles the API. The returned close func releases storage
// and must run after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	matchRepo, closeStorage, err := newMatchRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	matchSvc := usecase.NewMatchService(matchRepo, logger)

	keycloakClient := keycloak.NewClient(keycloak.Config{
		BaseURL:         cfg.KeycloakBaseURL,
		Realm:           cfg.KeycloakRealm,
		IntrospectPath:  cfg.KeycloakIntrospectPath,
		ClientID:        cfg.KeycloakClientID,
		ClientSecret:    cfg.KeycloakClientSecret,
		Timeout:         cfg.KeycloakTimeout,
		CacheTTL:        cfg.KeycloakCacheTTL,
		CacheMaxEntries: cfg.KeycloakCacheMaxEntries,
		CircuitBreaker:  cfg.KeycloakCircuitBreaker(),
	}, logger)

	handler := httpapi.NewHandler(matchSvc, logger)
	router := httpapi.NewRouter(
		handler,
		keycloakClient,
		idgen.NewUUIDGenerator(),
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, closeStorage, nil
}

func newMatchRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (match.Repository, func() error, error) {
	var (
		repo      match.Repository
		closeRepo = func() error { return nil }
	)

	switch cfg.Storage {
	case config.StorageMemory:
		repo = memory.NewMatchRepository(nil)
		logger.Warn("using in-memory match storage; data is lost on restart")
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo = postgres.NewMatchRepository(db)
		closeRepo = db.Close
		logger.Info("connected to postgres",
			"max_open_conns", cfg.DBMaxOpenConns,
			"max_idle_conns", cfg.DBMaxIdleConns,
		)
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL, cache.WithMaxEntries(matchCacheMaxEntries))
		repo = cacherepo.NewMatchRepository(repo, store)
		logger.Info("match read cache enabled", "ttl", cfg.CacheTTL.String())
	}

	return repo, closeRepo, nil
}
