package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface.
// Versioned updates use "WHERE version = ?" so a stale write touches no rows.
type Storage struct {
	db *gorm.DB
}

// New opens a connection pool and optionally migrates the schema
func New(cfg Config) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	s := NewWithDB(db)
	if cfg.AutoMigrate {
		if err := s.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewWithDB wraps an existing gorm handle
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates the ladder tables
func (s *Storage) Migrate() error {
	return s.db.AutoMigrate(&playerRow{}, &teamRow{}, &matchRow{})
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	player.Version = max(player.Version, 1)
	return s.upsert(ctx, toPlayerRow(player))
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrPlayerNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var rows []playerRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	players := make([]*model.Player, 0, len(rows))
	for i := range rows {
		players = append(players, rows[i].toModel())
	}
	return players, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	team.Version = max(team.Version, 1)
	row, err := toTeamRow(team)
	if err != nil {
		return err
	}
	return s.upsert(ctx, row)
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	var row teamRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrTeamNotFound)
	}
	return row.toModel()
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	var rows []teamRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	teams := make([]*model.Team, 0, len(rows))
	for i := range rows {
		team, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	row, err := toMatchRow(match)
	if err != nil {
		return err
	}
	return s.upsert(ctx, row)
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var row matchRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		return nil, notFound(err, model.ErrMatchNotFound)
	}
	return row.toModel()
}

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	var rows []matchRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	matches := make([]*model.Match, 0, len(rows))
	for i := range rows {
		match, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Commit writes the batch in one transaction. Records at version 0 are
// inserted; others are updated only if the stored version still matches.
func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range batch.Players {
			row := toPlayerRow(p)
			row.Version = p.Version + 1
			if err := writeVersioned(tx, row, &playerRow{}, row.ID, p.Version, row.columns()); err != nil {
				return err
			}
		}

		for _, t := range batch.Teams {
			row, err := toTeamRow(t)
			if err != nil {
				return err
			}
			row.Version = t.Version + 1
			if err := writeVersioned(tx, row, &teamRow{}, row.ID, t.Version, row.columns()); err != nil {
				return err
			}
		}

		if batch.Match != nil {
			row, err := toMatchRow(batch.Match)
			if err != nil {
				return err
			}
			if err := tx.Create(row).Error; err != nil {
				return duplicate(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range batch.Players {
		p.Version++
	}
	for _, t := range batch.Teams {
		t.Version++
	}
	return nil
}

// writeVersioned inserts row when expected is 0, otherwise updates the
// columns of the record with that id and version
func writeVersioned(tx *gorm.DB, row any, table any, id string, expected int64, columns map[string]any) error {
	if expected == 0 {
		return duplicate(tx.Create(row).Error)
	}

	result := tx.Model(table).
		Where("id = ? AND version = ?", id, expected).
		Updates(columns)
	if result.Error != nil {
		return duplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrConflict
	}
	return nil
}

func (s *Storage) upsert(ctx context.Context, row any) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// uniqueViolation is the PostgreSQL error code for a unique index violation
const uniqueViolation = "23505"

// duplicate maps unique index violations to model errors: a taken name to
// its own error, anything else (an existing id) to model.ErrConflict
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "idx_players_nickname":
		return model.ErrNicknameTaken
	case "idx_teams_name":
		return model.ErrTeamNameTaken
	default:
		return model.ErrConflict
	}
}
