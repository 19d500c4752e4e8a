package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/allotment/internal/app/controllers"
	appMigrations "github.com/yigit/allotment/internal/app/migrations"
	appRepos "github.com/yigit/allotment/internal/app/repositories"
	appRoutes "github.com/yigit/allotment/internal/app/routes"
	appServices "github.com/yigit/allotment/internal/app/services"
	"github.com/yigit/allotment/internal/config"
	"github.com/yigit/allotment/internal/db"
	appMiddleware "github.com/yigit/allotment/internal/middleware"
	pkgAuth "github.com/yigit/allotment/internal/pkg/auth"
	"github.com/yigit/allotment/internal/pkg/filestorage"
	"github.com/yigit/allotment/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	RecordService    appServices.RecordService // Interface type
	AuthService      appServices.AuthService   // Interface type
	AuthController   *appControllers.AuthController
	RecordController *appControllers.RecordController
	HealthController *appControllers.HealthController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	FileStorage      *filestorage.LocalStorage
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env and the configuration at
// config.ResolvePath(), then configures the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	return LoadConfigFromPath(config.ResolvePath())
}

// LoadConfigFromPath is LoadConfigAndSetupLogger with an explicit config file.
func LoadConfigFromPath(configPath string) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and, when enabled, applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		if _, err := RunMigrations(ctx, database.Pool, lgr); err != nil {
			database.Close()
			return nil, err
		}
	}

	return database.Pool, nil
}

// RunMigrations applies the embedded schema migrations and returns how many ran.
func RunMigrations(ctx context.Context, conn appMigrations.Conn, lgr zerolog.Logger) (int, error) {
	lgr.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(conn, lgr)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return applied, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	hasher, err := pkgAuth.NewPasswordHasher(cfg.Admin.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("invalid admin bcrypt cost: %w", err)
	}

	credentials, err := pkgAuth.NewStaticCredentials(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash, hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to set up admin credentials: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.RecordService = appServices.NewRecordService(
		deps.Repos.StudentRecordRepository,
		deps.FileStorage,
		appServices.RecordServiceConfig{MaxUploadSize: cfg.Import.MaxUploadSize},
		lgr,
	)
	deps.AuthService = appServices.NewAuthService(credentials, deps.JWTService, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.RecordController = appControllers.NewRecordController(deps.RecordService, cfg.Import.MaxUploadSize, lgr)
	deps.HealthController = appControllers.NewHealthController(dbPool)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = cfg.Import.MaxUploadSize

	// Setup Swagger
	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.RecordController,
		deps.HealthController,
		deps.AuthMiddleware,
	)

	return router
}
