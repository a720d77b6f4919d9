package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamladder/internal/dependencies/mocks"
	"github.com/mcoot/teamladder/internal/model"
	"github.com/mcoot/teamladder/internal/storage/memory"
	"github.com/mcoot/teamladder/internal/testutil"
)

type upload struct {
	bucket string
	key    string
	body   []byte
}

// fakeUploader records uploads and fails while err is set
type fakeUploader struct {
	mu      sync.Mutex
	uploads []upload
	err     error
}

func (f *fakeUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, upload{
		bucket: aws.ToString(params.Bucket),
		key:    aws.ToString(params.Key),
		body:   body,
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type ExporterSuite struct {
	suite.Suite
	storage  *memory.Storage
	uploader *fakeUploader
	exporter *Exporter
	ctx      context.Context
}

func TestExporterSuite(t *testing.T) {
	suite.Run(t, new(ExporterSuite))
}

func (s *ExporterSuite) SetupTest() {
	s.storage = memory.New()
	s.uploader = &fakeUploader{}
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.exporter = NewExporter(s.storage, s.uploader, "ladder-archive", clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{ID: "t1", Name: "Red Dragons"}))
	s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{ID: "t2", Name: "Blue Öwls"}))
}

func (s *ExporterSuite) saveMatch(id model.MatchID) {
	s.Require().NoError(s.storage.SaveMatch(s.ctx, &model.Match{
		ID:            id,
		Team1ID:       "t1",
		Team2ID:       "t2",
		DurationHours: 1,
	}))
}

func (s *ExporterSuite) TestObjectKey() {
	key := ObjectKey(&model.Match{ID: "m1"}, "Red Dragons", "Blue Owls")
	s.Equal("matches/red-dragons-vs-blue-owls/m1.json", key)
}

func (s *ExporterSuite) TestExportPendingUploadsEachMatchOnce() {
	s.saveMatch("m1")
	s.saveMatch("m2")

	n, err := s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Equal(2, s.uploader.count())

	s.saveMatch("m3")
	n, err = s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ExporterSuite) TestExportedRecordContents() {
	s.saveMatch("m1")

	_, err := s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, s.uploader.count())

	up := s.uploader.uploads[0]
	s.Equal("ladder-archive", up.bucket)
	s.Equal("matches/red-dragons-vs-blue-owls/m1.json", up.key)

	var record Record
	s.Require().NoError(json.Unmarshal(up.body, &record))
	s.Equal(model.MatchID("m1"), record.Match.ID)
	s.Equal("Red Dragons", record.Team1Name)
	s.Equal("Blue Öwls", record.Team2Name)
}

func (s *ExporterSuite) TestFailedUploadIsRetried() {
	s.saveMatch("m1")
	s.uploader.err = errors.New("bucket unavailable")

	n, err := s.exporter.ExportPending(s.ctx)
	s.Error(err)
	s.Zero(n)

	s.uploader.err = nil
	n, err = s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ExporterSuite) TestMissingTeamFallsBackToID() {
	s.Require().NoError(s.storage.SaveMatch(s.ctx, &model.Match{ID: "m1", Team1ID: "t1", Team2ID: "gone", DurationHours: 1}))

	_, err := s.exporter.ExportPending(s.ctx)
	s.Require().NoError(err)
	s.Equal("matches/red-dragons-vs-gone/m1.json", s.uploader.uploads[0].key)
}

func (s *ExporterSuite) TestScheduleRunsExport() {
	s.saveMatch("m1")

	sched, err := s.exporter.Schedule(10 * time.Millisecond)
	s.Require().NoError(err)
	defer func() { _ = sched.Shutdown() }()

	s.Eventually(func() bool { return s.uploader.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func (s *ExporterSuite) TestConfigEnabled() {
	s.False(DefaultConfig().Enabled())

	cfg := DefaultConfig()
	cfg.Bucket = "ladder-archive"
	s.True(cfg.Enabled())
}
