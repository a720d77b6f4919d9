// Package archive copies recorded matches to object storage as JSON.
// It runs on its own schedule and only reads from the stores.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"

	"github.com/mcoot/teamladder/internal/dependencies/clock"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage"
)

// Uploader is the part of the S3 client the exporter uses
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Record is the archived form of a match
type Record struct {
	Match      *model.Match `json:"match"`
	Team1Name  string       `json:"team1_name"`
	Team2Name  string       `json:"team2_name"`
	ExportedAt time.Time    `json:"exported_at"`
}

// Exporter uploads every match it has not exported yet.
// The exported set lives in memory, so a restart exports everything again
// and overwrites the same object keys.
type Exporter struct {
	storage  storage.Storage
	uploader Uploader
	bucket   string
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	exported map[model.MatchID]struct{}
}

// NewExporter creates a new Exporter
func NewExporter(storage storage.Storage, uploader Uploader, bucket string, clock clock.Clock, logger *slog.Logger) *Exporter {
	return &Exporter{
		storage:  storage,
		uploader: uploader,
		bucket:   bucket,
		clock:    clock,
		logger:   logger,
		exported: make(map[model.MatchID]struct{}),
	}
}

// ObjectKey returns the object key for a match between the named teams
func ObjectKey(match *model.Match, team1Name, team2Name string) string {
	return fmt.Sprintf("matches/%s-vs-%s/%s.json", slug.Make(team1Name), slug.Make(team2Name), match.ID)
}

// ExportPending uploads each match not yet exported and returns how many
// were uploaded. A failed upload is left pending for the next run.
func (e *Exporter) ExportPending(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	matches, err := e.storage.ListMatches(ctx)
	if err != nil {
		return 0, model.WrapStoreError("list matches", err)
	}

	uploaded := 0
	var firstErr error
	for _, match := range matches {
		if _, done := e.exported[match.ID]; done {
			continue
		}
		if err := e.export(ctx, match); err != nil {
			e.logger.Error("failed to export match",
				slog.String("match_id", string(match.ID)),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.exported[match.ID] = struct{}{}
		uploaded++
	}

	if uploaded > 0 {
		e.logger.Info("matches exported",
			slog.Int("count", uploaded),
			slog.String("bucket", e.bucket),
		)
	}
	return uploaded, firstErr
}

func (e *Exporter) export(ctx context.Context, match *model.Match) error {
	record := Record{
		Match:      match,
		Team1Name:  e.teamName(ctx, match.Team1ID),
		Team2Name:  e.teamName(ctx, match.Team2ID),
		ExportedAt: e.clock.Now(),
	}

	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = e.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(ObjectKey(match, record.Team1Name, record.Team2Name)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload match: %w", err)
	}
	return nil
}

// teamName falls back to the id if the team cannot be read
func (e *Exporter) teamName(ctx context.Context, id model.TeamID) string {
	team, err := e.storage.GetTeam(ctx, id)
	if err != nil {
		return string(id)
	}
	return team.Name
}

// Schedule runs ExportPending every interval until the returned scheduler
// is shut down. Runs never overlap.
func (e *Exporter) Schedule(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			_, _ = e.ExportPending(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
