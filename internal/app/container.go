// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/extract"
	"github.com/hseto/minute/internal/infra/config"
	"github.com/hseto/minute/internal/infra/filestore"
	"github.com/hseto/minute/internal/infra/logging"
	"github.com/hseto/minute/internal/infra/oracle"
	"github.com/hseto/minute/internal/infra/sqlstore"
	"github.com/hseto/minute/internal/infra/toolserver"
	"github.com/hseto/minute/internal/infra/tracker"
	"github.com/hseto/minute/internal/scoring"
	"github.com/hseto/minute/internal/store"
	"github.com/hseto/minute/internal/usecase"
)

// TrackerTokenEnv is the environment variable holding the tracker API token.
// It is read from the process environment or a repo-local .env file.
const TrackerTokenEnv = "MINUTE_TRACKER_TOKEN"

// OracleKeyEnv is the environment variable holding the HTTP oracle API key.
const OracleKeyEnv = "MINUTE_ORACLE_KEY"

// Config holds the application paths.
type Config struct {
	RepoRoot  string // Working directory the command runs in
	MinuteDir string // Path to the .minute directory
}

// Container provides dependency injection for the application. It binds
// ports to implementations once; use case factory methods hand out wired
// instances.
type Container struct {
	Tasks            domain.TaskStore // Validating store over the selected backend
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	ConfigLoader     domain.ConfigLoader
	Oracle           domain.Oracle
	AppConfig        *domain.Config
	Logger           *logging.Logger
	Config           Config

	closers []io.Closer
}

// New creates a Container rooted at the given directory.
func New(dir string) (*Container, error) {
	cfg := Config{
		RepoRoot:  dir,
		MinuteDir: filepath.Join(dir, ".minute"),
	}

	// Secrets live in .env, never in config.toml.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	configLoader := config.NewLoader(cfg.MinuteDir)
	appCfg, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.MinuteDir, logging.ParseLevel(appCfg.Log.Level))
	clock := domain.RealClock{}

	c := &Container{
		Clock:        clock,
		ConfigLoader: configLoader,
		AppConfig:    appCfg,
		Logger:       logger,
		Config:       cfg,
		closers:      []io.Closer{logger},
	}

	backend, initializer, err := c.openBackend(appCfg, clock)
	if err != nil {
		return nil, err
	}
	c.Tasks = store.NewValidating(backend, clock, appCfg.Extract.ConfidenceThreshold)
	c.StoreInitializer = initializer

	if appCfg.Oracle.Kind == "http" {
		c.Oracle = oracle.NewHTTP(appCfg.Oracle.URL, os.Getenv(OracleKeyEnv))
	} else {
		c.Oracle = oracle.NewHeuristic()
	}

	return c, nil
}

// NewWithDeps creates a Container with explicit dependencies. Used in tests.
func NewWithDeps(cfg Config, tasks domain.TaskStore, initializer domain.StoreInitializer, clock domain.Clock, orc domain.Oracle, appCfg *domain.Config) *Container {
	return &Container{
		Tasks:            tasks,
		StoreInitializer: initializer,
		Clock:            clock,
		Oracle:           orc,
		AppConfig:        appCfg,
		Logger:           logging.New("", logging.ParseLevel(appCfg.Log.Level)),
		Config:           cfg,
	}
}

func (c *Container) openBackend(appCfg *domain.Config, clock domain.Clock) (domain.TaskStore, domain.StoreInitializer, error) {
	switch appCfg.Store.Backend {
	case "sqlite":
		path := appCfg.Store.Path
		if path == "" {
			path = filepath.Join(c.Config.MinuteDir, "minute.db")
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(c.Config.RepoRoot, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}
		db, err := sqlstore.Open(path, clock, c.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		c.closers = append(c.closers, db)
		return db, db, nil

	case "tracker":
		token := os.Getenv(TrackerTokenEnv)
		if token == "" {
			return nil, nil, fmt.Errorf("tracker backend requires %s", TrackerTokenEnv)
		}
		ts := tracker.New(appCfg.Tracker, token, clock, c.Logger)
		// Lists are provisioned on the tracker side; nothing to create locally.
		return ts, noopInitializer{}, nil

	default:
		dir := appCfg.Store.Dir
		if dir == "" {
			dir = c.Config.MinuteDir
		} else if !filepath.IsAbs(dir) {
			dir = filepath.Join(c.Config.RepoRoot, dir)
		}
		fs := filestore.New(dir, clock, c.Logger)
		return fs, fs, nil
	}
}

type noopInitializer struct{}

func (noopInitializer) Initialize() error { return nil }

// Close releases backend handles and log files.
func (c *Container) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ExtractEngine returns the extraction engine built from config.
func (c *Container) ExtractEngine() *extract.Engine {
	return extract.NewEngine(c.AppConfig.Extract, c.AppConfig.Scoring)
}

// ScoringEngine returns the scoring engine built from config.
func (c *Container) ScoringEngine() *scoring.Engine {
	return scoring.NewEngine(c.Oracle, c.Clock, c.AppConfig.Scoring)
}

// Use case factory methods.

func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer, c.Logger)
}

func (c *Container) ExtractNoteUseCase() *usecase.ExtractNote {
	return usecase.NewExtractNote(c.Tasks, c.ExtractEngine(), c.Clock, c.Logger, c.AppConfig.Extract.ConfidenceThreshold)
}

func (c *Container) ScoreTasksUseCase() *usecase.ScoreTasks {
	return usecase.NewScoreTasks(c.Tasks, c.ScoringEngine(), c.Logger)
}

func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Tasks, c.Clock, c.Logger)
}

func (c *Container) UpdateTaskUseCase() *usecase.UpdateTask {
	return usecase.NewUpdateTask(c.Tasks, c.Logger)
}

func (c *Container) CompleteTaskUseCase() *usecase.CompleteTask {
	return usecase.NewCompleteTask(c.Tasks, c.Logger)
}

func (c *Container) PromoteTaskUseCase() *usecase.PromoteTask {
	return usecase.NewPromoteTask(c.Tasks, c.Logger)
}

func (c *Container) ArchiveTaskUseCase() *usecase.ArchiveTask {
	return usecase.NewArchiveTask(c.Tasks, c.Logger)
}

func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

func (c *Container) BriefUseCase() *usecase.Brief {
	return usecase.NewBrief(c.Tasks, c.Clock)
}

// ToolServer returns the JSON-RPC tool server over all use cases.
func (c *Container) ToolServer() *toolserver.Server {
	return toolserver.NewServer(toolserver.Deps{
		Extract:  c.ExtractNoteUseCase(),
		Score:    c.ScoreTasksUseCase(),
		Create:   c.NewTaskUseCase(),
		Update:   c.UpdateTaskUseCase(),
		Complete: c.CompleteTaskUseCase(),
		Promote:  c.PromoteTaskUseCase(),
		Archive:  c.ArchiveTaskUseCase(),
		List:     c.ListTasksUseCase(),
	})
}
