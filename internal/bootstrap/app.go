package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"checkcontrat-backend/internal/analysis"
	"checkcontrat-backend/internal/checks"
	"checkcontrat-backend/internal/compliance"
	"checkcontrat-backend/internal/extract"
	"checkcontrat-backend/internal/files"
	"checkcontrat-backend/internal/llm"
	openai "checkcontrat-backend/internal/llm/openai"
	"checkcontrat-backend/internal/report"
	"checkcontrat-backend/internal/shared/cache"
	"checkcontrat-backend/internal/shared/config"
	"checkcontrat-backend/internal/shared/server"
	"checkcontrat-backend/internal/shared/server/middleware"
	"checkcontrat-backend/internal/shared/storage/db"
	"checkcontrat-backend/internal/shared/storage/object"
	localstore "checkcontrat-backend/internal/shared/storage/object/local"
	miniostore "checkcontrat-backend/internal/shared/storage/object/minio"
	s3store "checkcontrat-backend/internal/shared/storage/object/s3"
	"checkcontrat-backend/internal/shared/telemetry"
	"checkcontrat-backend/internal/uploads"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Redis        *cache.RedisCache
	InputStore   object.ObjectStore
	OutputStore  object.ObjectStore
	Orchestrator *compliance.Orchestrator
	ChecksRepo   checks.Repo
	ChecksSvc    *checks.Service
	UploadsSvc   *uploads.Service
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	input, output, err := buildStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisCache, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Redis:       redisCache,
		InputStore:  input,
		OutputStore: output,
	}
	app.Orchestrator = compliance.New(
		extract.New(input),
		analysis.NewClient(completer),
		report.New(output, cfg.ReportLocation()),
	)

	if sqlDB != nil {
		app.ChecksRepo = &checks.PGRepo{DB: sqlDB}
	} else {
		app.ChecksRepo = checks.NewMemoryRepo()
	}
	app.ChecksSvc = &checks.Service{
		Repo:     app.ChecksRepo,
		Analyser: app.Orchestrator,
		Timeout:  cfg.AnalysisTimeout,
		Retries:  cfg.AnalysisRetries,
	}
	app.UploadsSvc = uploads.NewService(input, cfg.MaxUploadBytes)

	deps := server.RouterDeps{
		Config:        cfg,
		DB:            sqlDB,
		UploadHandler: &uploads.Handler{Svc: app.UploadsSvc},
		CheckHandler:  checks.NewHandler(app.ChecksSvc),
		FileHandler:   &files.Handler{Input: input, Output: output, Reports: app.ChecksSvc},
	}
	if redisCache != nil {
		deps.Redis = redisCache
		deps.Limiter = middleware.NewRedisLimiter(redisCache)
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// buildStores returns the input (uploads) and output (reports) areas.
func buildStores(ctx context.Context, cfg config.Config) (object.ObjectStore, object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		input, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3InputPrefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, err
		}
		output, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3OutputPrefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, err
		}
		return input, output, nil
	case "minio":
		opts := miniostore.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			Region:    cfg.MinIO.Region,
			UseSSL:    cfg.MinIO.UseSSL,
		}
		opts.Prefix = cfg.S3InputPrefix
		input, err := miniostore.New(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		opts.Prefix = cfg.S3OutputPrefix
		output, err := miniostore.New(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return input, output, nil
	default:
		return localstore.New(cfg.InputDir), localstore.New(cfg.OutputDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) (*cache.RedisCache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		telemetry.Warn("bootstrap.redis.unreachable", map[string]any{"err": err.Error()})
	}
	return rc, nil
}

func buildLLM(cfg config.Config) (llm.Completer, error) {
	if cfg.LLMProvider != "openai" || strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAIBaseURL)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
