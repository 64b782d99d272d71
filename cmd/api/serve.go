package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iconsmith/iconsmith-backend/config"
	httpapi "github.com/iconsmith/iconsmith-backend/internal/api/http"
	"github.com/iconsmith/iconsmith-backend/internal/auth"
	"github.com/iconsmith/iconsmith-backend/internal/bootstrap"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/color"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/figma"
	imhttp "github.com/iconsmith/iconsmith-backend/internal/icon_matching/http"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/llm"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/repository"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/search"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/service"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/storage/objects"
	"github.com/iconsmith/iconsmith-backend/internal/storage/postgres"
	"github.com/iconsmith/iconsmith-backend/internal/users"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Get()
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateOnStart {
		if err := postgres.MigrateUp(cfg.Database.URL()); err != nil {
			return err
		}
	}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{URL: cfg.Database.URL()})
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("color cache disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	archive, err := objects.NewClient(objects.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return err
	}
	if archive.Enabled() {
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("storage bucket: %w", err)
		}
	}

	authn, err := authMiddleware(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.New(pipelineDeps(cfg, sqlDB, rdb, archive))
	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Checks: map[string]httpapi.Check{
			"postgres": pool.Ping,
			"redis":    redisCheck(rdb),
		},
		Auth:  authn,
		Users: users.NewRepo(pool),
		Icons: imhttp.New(svc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pipelineDeps(cfg *config.Config, sqlDB *sql.DB, rdb *redis.Client, archive *objects.Client) service.Deps {
	models := llm.New(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	colors := color.NewDefaultResolver(models, color.Cached(rdb, cfg.Redis.ColorTTL))

	d := service.Deps{
		Extractor: models,
		Writer:    models,
		Matcher:   models,
		Rewriter:  models,
		Colors:    colors,
		Searcher: search.NewClient(search.Config{
			APIKey:         cfg.Freepik.APIKey,
			BaseURL:        cfg.Freepik.BaseURL,
			RequestsPerSec: cfg.Freepik.RequestsPerSec,
			Burst:          cfg.Freepik.Burst,
		}),
		Store:   repository.NewProjectRepository(sqlDB),
		Fetcher: search.NewFetcher(nil),
	}
	if cfg.Figma.Token != "" {
		d.Renderer = figma.NewClient(figma.Config{Token: cfg.Figma.Token, BaseURL: cfg.Figma.BaseURL})
	}
	if archive.Enabled() {
		d.Archive = archive
	}
	return d
}

// authMiddleware verifies Firebase ID tokens when credentials are configured
// and trusts the dev headers otherwise.
func authMiddleware(ctx context.Context, cfg *config.Config) (gin.HandlerFunc, error) {
	if cfg.Firebase.CredentialsPath == "" {
		logger.Get().Warn("firebase credentials not set, using development identities")
		return auth.DevUser(), nil
	}
	client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return auth.FirebaseAuthMiddleware(client), nil
}

func redisCheck(rdb *redis.Client) httpapi.Check {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
