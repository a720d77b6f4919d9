package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/dependencies/idgen"
	"github.com/mcoot/teamladder/internal/dependencies/random"
	"github.com/mcoot/teamladder/internal/services/archive"
	"github.com/mcoot/teamladder/internal/services/balance"
	"github.com/mcoot/teamladder/internal/services/match"
	"github.com/mcoot/teamladder/internal/services/player"
	"github.com/mcoot/teamladder/internal/services/team"
	"github.com/mcoot/teamladder/internal/storage"
	"github.com/mcoot/teamladder/internal/storage/memory"
	pgstorage "github.com/mcoot/teamladder/internal/storage/postgres"
	redisstorage "github.com/mcoot/teamladder/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    idgen.Generator

	// Services
	PlayerService  *player.Service
	TeamService    *team.Service
	MatchService   *match.Service
	BalanceService *balance.Service

	// Archive is nil unless an archive bucket is configured
	Archive *archive.Exporter

	scheduler gocron.Scheduler
}

// LadderConfig holds the rating and roster rules
type LadderConfig struct {
	// TeamSize is the number of players per team (defaults to model.DefaultTeamSize)
	TeamSize int
	// BaselineRating is the rating new players start at
	BaselineRating float64
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Ladder holds the rating and roster rules
	Ladder LadderConfig
	// Archive configures match export (optional, disabled without a bucket)
	Archive archive.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	ids := idgen.New()

	app := newWithDependencies(store, clk, rnd, ids, cfg.Ladder, logger)

	if cfg.Archive.Enabled() {
		client, err := archive.NewS3Client(context.Background(), cfg.Archive)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		app.Archive = archive.NewExporter(store, client, cfg.Archive.Bucket, clk, logger)
		app.scheduler, err = app.Archive.Schedule(cfg.Archive.Interval)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(*cfg.PostgresConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids idgen.Generator,
	ladder LadderConfig,
	logger *slog.Logger,
) *App {
	playerService := player.New(store, clk, ids, logger, player.Config{BaselineRating: ladder.BaselineRating})
	teamService := team.New(store, clk, ids, logger, team.Config{TeamSize: ladder.TeamSize})
	matchService := match.New(store, clk, ids, logger)
	balanceService := balance.New(store, clk, rnd, ids, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		IDs:            ids,
		PlayerService:  playerService,
		TeamService:    teamService,
		MatchService:   matchService,
		BalanceService: balanceService,
	}
}

// Close stops the archive schedule and releases the storage
func (a *App) Close() error {
	var errs []error
	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Shutdown())
	}
	errs = append(errs, a.Storage.Close())
	return errors.Join(errs...)
}
