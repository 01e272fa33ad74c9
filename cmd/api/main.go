package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"recordvault.org/internal/auth"
	"recordvault.org/internal/config"
	"recordvault.org/internal/httpapi"
	"recordvault.org/internal/ids"
	"recordvault.org/internal/migrate"
	"recordvault.org/internal/obs"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()
	defer obs.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	var db *sql.DB
	var dir interface {
		auth.Directory
		auth.RoleRegistry
	}
	if cfg.Postgres.DSN != "" {
		db, err = sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			log.Fatal("open db", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		if os.Getenv("RECORDVAULT_MIGRATE_ON_START") == "true" {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			runner := migrate.NewRunner(db)
			if err := runner.Up(ctx); err != nil {
				cancel()
				log.Fatal("migrate", zap.Error(err))
			}
			if err := runner.Seed(ctx); err != nil {
				cancel()
				log.Fatal("seed", zap.Error(err))
			}
			cancel()
		}
		dir = auth.NewPGDirectory(db)
	} else {
		log.Warn("no RECORDVAULT_PG_DSN set, using seeded in-memory directory")
		dir = devDirectory(log)
	}

	var svcOpts []auth.ServiceOption
	svcOpts = append(svcOpts,
		auth.WithAccessTTL(cfg.Auth.AccessTokenTTL),
		auth.WithRefreshTTL(cfg.Auth.RefreshTokenTTL),
		auth.WithLogger(log),
	)
	if cfg.Auth.BcryptCost > 0 || cfg.Auth.MaxConcurrentHashes > 0 {
		svcOpts = append(svcOpts, auth.WithHasher(auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.MaxConcurrentHashes)))
	}
	svc, err := auth.NewService(dir, []byte(cfg.Auth.Secret), svcOpts...)
	if err != nil {
		log.Fatal("build auth service", zap.Error(err))
	}

	routes, err := auth.NewRegistry(auth.DefaultRequirements()...)
	if err != nil {
		log.Fatal("build route registry", zap.Error(err))
	}
	engine, err := auth.NewEngine(svc.Codec(), routes, auth.WithEngineLogger(log))
	if err != nil {
		log.Fatal("build authorization engine", zap.Error(err))
	}

	api := httpapi.New(svc, engine, dir, dir, httpapi.ReadyProbe{DB: db}, version, log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("starting recordvault-api", zap.String("version", version), zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Info("stopped")
}

// devDirectory seeds an in-memory directory with one user per role so the API
// is usable without a database. Dev fixtures only, never reachable once a DSN
// is configured.
func devDirectory(log *zap.Logger) *auth.MemoryDirectory {
	dir := auth.NewMemoryDirectory()
	hasher := auth.NewHasher(0, 0)

	seed := []struct {
		username string
		secret   string
		role     auth.RoleName
	}{
		{"superadmin@recordvault.dev", "SuperAdmin1", auth.RoleSuperAdmin},
		{"admin@recordvault.dev", "Admin1234", auth.RoleAdmin},
		{"employee@recordvault.dev", "Employee1", auth.RoleEmployee},
		{"customer@recordvault.dev", "Customer1", auth.RoleCustomer},
	}
	for _, s := range seed {
		hash, err := hasher.Hash(context.Background(), s.secret)
		if err != nil {
			log.Fatal("seed dev user", zap.String("username", s.username), zap.Error(err))
		}
		now := time.Now().UTC()
		dir.Seed(auth.StoredUser{
			ID:           ids.New(),
			Username:     s.username,
			PasswordHash: hash,
			Role:         s.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		log.Info("seeded dev user", zap.String("username", s.username), zap.String("role", string(s.role)))
	}
	return dir
}
