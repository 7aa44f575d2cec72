package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/account"
	"jobtrack-backend/internal/analyses"
	"jobtrack-backend/internal/applications"
	googleauth "jobtrack-backend/internal/auth"
	"jobtrack-backend/internal/llm"
	openai "jobtrack-backend/internal/llm/openai"
	"jobtrack-backend/internal/quota"
	"jobtrack-backend/internal/resumes"
	"jobtrack-backend/internal/shared/config"
	"jobtrack-backend/internal/shared/server"
	"jobtrack-backend/internal/shared/storage/db"
	"jobtrack-backend/internal/shared/storage/object"
	localstore "jobtrack-backend/internal/shared/storage/object/local"
	s3store "jobtrack-backend/internal/shared/storage/object/s3"
	"jobtrack-backend/internal/users"
)

// App holds the shared dependency graph built once at startup.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	UsersRepo        users.Repo
	ResumesRepo      resumes.Repo
	ApplicationsRepo applications.Repo
	AnalysesRepo     analyses.Repo

	Limiter *quota.Limiter

	UsersService        *users.Service
	ResumesService      *resumes.Service
	ApplicationsService *applications.Service
	AnalysesService     *analyses.Service
	AccountService      *account.Service

	ResumeHandler      *resumes.Handler
	ApplicationHandler *applications.Handler
	AnalysisHandler    *analyses.Handler
	UserHandler        *users.Handler
	AccountHandler     *account.Handler
	GoogleAuth         *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
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

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		ResumeHandler:      app.ResumeHandler,
		ApplicationHandler: app.ApplicationHandler,
		AnalysisHandler:    app.AnalysisHandler,
		UserHandler:        app.UserHandler,
		AccountHandler:     app.AccountHandler,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var sqlDB *sql.DB
	var err error
	if db.IsLambdaRuntime() {
		// Execution environments are reused; keep one pool per environment.
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	if app.Config.AnalysisLimitBypass {
		log.Printf("bootstrap: daily analysis limit bypass is ON (env=%s)", app.Config.Env)
	}
	app.Limiter = quota.NewLimiter(app.AnalysesRepo, app.Config.DailyAnalysisLimit, app.Config.AnalysisLimitBypass, nil)

	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumesService = &resumes.Service{Store: app.Store, Repo: app.ResumesRepo}
	app.ApplicationsService = applications.NewService(app.ApplicationsRepo)
	app.AnalysesService = &analyses.Service{
		Repo:       app.AnalysesRepo,
		Limiter:    app.Limiter,
		Resumes:    app.ResumesRepo,
		Apps:       app.ApplicationsRepo,
		Store:      app.Store,
		LLM:        llmClient,
		MaxTokens:  app.Config.LLMMaxTokens,
		MinTextLen: app.Config.MinResumeTextLen,
	}

	app.AccountService = account.NewService(app.DB, app.ResumesRepo, app.ApplicationsRepo, app.AnalysesRepo)

	app.ResumeHandler = resumes.NewHandler(app.ResumesService)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.ApplicationHandler = applications.NewHandler(app.ApplicationsService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.UserHandler = users.NewHandler(app.UsersService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)

	return nil
}
