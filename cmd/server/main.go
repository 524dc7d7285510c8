package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"identity/backend/internal/config"
	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/httpserver"
	"identity/backend/internal/infrastructure/memory"
	"identity/backend/internal/infrastructure/postgres"
	authusecase "identity/backend/internal/usecase/auth"
	endpointusecase "identity/backend/internal/usecase/endpoint"
	guardusecase "identity/backend/internal/usecase/guard"
	roleusecase "identity/backend/internal/usecase/role"
	tenantusecase "identity/backend/internal/usecase/tenant"
	tokenusecase "identity/backend/internal/usecase/token"
	userusecase "identity/backend/internal/usecase/user"
)

type repositories struct {
	users     identity.UserRepository
	tenants   identity.TenantRepository
	tokens    identity.TokenRepository
	roles     identity.RoleRepository
	grants    identity.GrantRepository
	endpoints identity.EndpointRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rootCtx := context.Background()

	var repos repositories
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.New(rootCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(rootCtx); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
		repos = repositories{
			users:     postgres.NewUserRepository(db.Pool),
			tenants:   postgres.NewTenantRepository(db.Pool),
			tokens:    postgres.NewTokenRepository(db.Pool),
			roles:     postgres.NewRoleRepository(db.Pool),
			grants:    postgres.NewGrantRepository(db.Pool),
			endpoints: postgres.NewEndpointRepository(db.Pool),
		}
	case config.StoreMemory:
		store := memory.NewStore()
		repos = repositories{
			users:     store.Users(),
			tenants:   store.Tenants(),
			tokens:    store.Tokens(),
			roles:     store.Roles(),
			grants:    store.Grants(),
			endpoints: store.Endpoints(),
		}
	default:
		log.Fatalf("unsupported STORE %q", cfg.Store)
	}

	tokenManager := tokenusecase.NewManager(repos.tokens, cfg.TokenTTL)
	guard := guardusecase.New(tokenManager, repos.users, repos.tenants, repos.grants, cfg.AdminRole)

	services := httpserver.Services{
		Auth:      authusecase.NewService(repos.users, tokenManager),
		Tokens:    tokenManager,
		Guard:     guard,
		Tenants:   tenantusecase.NewService(repos.tenants, guard),
		Users:     userusecase.NewService(repos.users, repos.tenants, guard),
		Roles:     roleusecase.NewService(repos.roles, repos.grants, repos.users, repos.tenants, guard),
		Endpoints: endpointusecase.NewService(repos.endpoints, guard),
	}

	server := httpserver.NewServer(cfg, services)
	log.Printf("HTTP server listening on %s (store=%s)", server.Addr(), cfg.Store)

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server closed: %v", err)
				return
			}
			log.Fatalf("server error: %v", err)
		}
		log.Printf("HTTP server stopped accepting new connections")
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v\n", err)
	} else {
		log.Printf("graceful shutdown completed")
	}
}
