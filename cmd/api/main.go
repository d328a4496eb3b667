package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-recording/internal/archive"
	"call-recording/internal/audit"
	"call-recording/internal/auth"
	"call-recording/internal/calls"
	"call-recording/internal/config"
	"call-recording/internal/httpapi"
	"call-recording/internal/media"
	"call-recording/internal/recordings"
	"call-recording/internal/reporting"
	"call-recording/internal/speech/deepgram"
	"call-recording/internal/telephony"
	"call-recording/internal/translate"
	"call-recording/internal/users"
	"call-recording/pkg/logger"
	"call-recording/pkg/metrics"
	"call-recording/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

const serviceName = "call-recording"

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if os.Getenv("APP_ENV") != "production" {
		// .env is optional for local runs
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	m := metrics.New(serviceName)

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	m.RegisterDB(db, "postgres")

	if err := utils.ApplySchema(rootCtx, db, schema()...); err != nil {
		log.Error("schema apply failed", "err", err)
		os.Exit(1)
	}

	archiver, err := archive.NewMinioArchiver(archive.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Region:        cfg.Storage.Region,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Error("object storage init failed", "err", err)
		os.Exit(1)
	}
	if err := archiver.EnsureBucket(rootCtx, cfg.Storage.Bucket); err != nil {
		log.Error("bucket check failed", "bucket", cfg.Storage.Bucket, "err", err)
		os.Exit(1)
	}

	fetchOpts := media.Options{Timeout: cfg.Ingest.FetchTimeout, MaxBytes: cfg.Ingest.MaxBytes}
	if cfg.Vonage.ApplicationID != "" {
		ra, err := telephony.LoadRecordingAuthorizer(cfg.Vonage.ApplicationID, cfg.Vonage.PrivateKeyPath)
		if err != nil {
			log.Error("recording authorizer init failed", "err", err)
			os.Exit(1)
		}
		fetchOpts.Authorizer = ra
	}

	store := calls.NewPostgresStore(db)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	pipeline, err := calls.NewPipeline(
		store,
		media.NewHTTPFetcher(fetchOpts),
		deepgram.New(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: true,
		}),
		translate.New(cfg.Translation.BaseURL, cfg.Translation.APIKey, cfg.Translation.Timeout),
		archiver,
		calls.PipelineOptions{
			Bucket:     cfg.Storage.Bucket,
			TargetLang: cfg.Translation.TargetLang,
			TempDir:    cfg.Ingest.TempDir,
			Metrics:    m,
		},
	)
	if err != nil {
		log.Error("pipeline init failed", "err", err)
		os.Exit(1)
	}

	coordOpts := calls.CoordinatorOptions{Audit: auditSvc, Metrics: m}
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()

		claimer, err := calls.NewRedisClaimer(rdb, cfg.Ingest.ClaimTTL)
		if err != nil {
			log.Error("claimer init failed", "err", err)
			os.Exit(1)
		}
		coordOpts.Claimer = claimer
	} else {
		log.Warn("redis not configured; concurrent completions for one call may ingest twice")
	}

	coordinator, err := calls.NewCoordinator(store, pipeline, coordOpts)
	if err != nil {
		log.Error("coordinator init failed", "err", err)
		os.Exit(1)
	}

	recRepo := recordings.NewPostgresRepo(db)
	deps := routeDeps{
		DB:      db,
		Metrics: m,
		AuthMW:  auth.RequireAccessToken(authManager),
		API: httpapi.Handlers{
			Auth:  authManager,
			Users: users.NewService(users.NewPostgresRepo(db), users.Options{AdminUsernames: cfg.Auth.AdminUsernames}),
			Recordings: recordings.NewService(recRepo, archiver, recordings.ServiceOptions{
				Bucket:  cfg.Storage.Bucket,
				TempDir: cfg.Ingest.TempDir,
				Metrics: m,
			}),
			Reporting:      reporting.NewService(recRepo),
			Calls:          coordinator,
			Audit:          auditSvc,
			MaxUploadBytes: cfg.Ingest.MaxBytes,
		},
		Webhooks: telephony.WebhookHandler{
			Calls:         coordinator,
			BridgeNumber:  cfg.Vonage.Number,
			Disclosure:    cfg.Vonage.DisclosureMessage,
			PublicBaseURL: cfg.App.PublicBaseURL,
		},
	}
	if cfg.Vonage.SignatureSecret != "" {
		verifier, err := telephony.NewSignatureVerifier(cfg.Vonage.SignatureSecret)
		if err != nil {
			log.Error("webhook verifier init failed", "err", err)
			os.Exit(1)
		}
		deps.WebhookMW = append(deps.WebhookMW, verifier.Middleware())
	} else {
		log.Warn("VONAGE_SIGNATURE_SECRET not set; webhook signatures are not verified")
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware())
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Recording webhooks run the ingest pipeline inline.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

func schema() []string {
	var out []string
	for _, s := range [][]string{calls.Schema, recordings.Schema, users.Schema, audit.Schema} {
		out = append(out, s...)
	}
	return out
}

// dbHealth is nil-safe so routes can be exercised without a database.
func dbHealth(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}
	return utils.HealthCheck(ctx, db, 2*time.Second)
}
