package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andy/billing/internal/clock"
	"github.com/andy/billing/internal/config"
	"github.com/andy/billing/internal/crypto"
	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/log"
	"github.com/andy/billing/internal/repository"
	"github.com/andy/billing/internal/service"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	Logger *log.Logger
	DB     *db.DB
	Clock  clock.Clock

	// Repositories
	ClientRepo repository.ClientRepository
	TaskRepo   repository.TaskRepository

	// Services
	ReportService service.ReportService
	ExportService service.ExportService
}

// New loads the default config and builds the App from it
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config. It opens and
// migrates the store and, when enabled, seeds the sample clients.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	logger := log.New(log.Config{Level: level, Format: cfg.Log.Format, Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	var key string
	if cfg.Database.Driver == db.DriverSQLCipher {
		var err error
		if key, err = databaseKey(crypto.NewKeyring(), logger); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(ctx, db.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		Key:    key,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	storeLog := logger.WithComponent(log.ComponentStore)
	version, _ := database.SchemaVersion(ctx)
	storeLog.Debug("database ready", log.FieldDriver, database.Driver, "schema_version", version)

	clientRepo := repository.NewClientRepo(database)
	taskRepo := repository.NewTaskRepo(database)

	if cfg.Database.Seed {
		n, err := repository.Seed(ctx, clientRepo)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		if n > 0 {
			storeLog.Info("seeded sample clients", "count", n)
		}
	}

	clk := clock.System
	reportService := service.NewReportService(clientRepo, taskRepo, clk, cfg.Report.TopClients, cfg.Report.RecentTasks)
	exportService := service.NewExportService(clientRepo, taskRepo, clk)

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		Clock:         clk,
		ClientRepo:    clientRepo,
		TaskRepo:      taskRepo,
		ReportService: reportService,
		ExportService: exportService,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// databaseKey returns the stored encryption key, prompting for a new one on
// first run when a terminal is attached.
func databaseKey(kr crypto.Keyring, logger *log.Logger) (string, error) {
	key, err := kr.GetKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, crypto.ErrNoKey) {
		return "", fmt.Errorf("failed to read encryption key: %w", err)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: set %s or run interactively", err, crypto.EnvKey)
	}

	fmt.Println("Setting up database encryption for the first time...")
	key, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := kr.SetKey(key); err != nil {
		logger.Warn("encryption key not stored, it will be asked for again", log.FieldError, err)
	}
	return key, nil
}

// promptForPassword asks twice for a new database password without echo
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your billing data will be encrypted with a password.")
	fmt.Println("The password is kept in your system keyring where one is available.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
