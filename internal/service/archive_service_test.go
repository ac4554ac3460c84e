package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-researcher-be/internal/model"
	"ai-researcher-be/pkg/events"
)

type fakeRunRepo struct {
	mu       sync.Mutex
	failures int
	attempts int
	created  []*model.ResearchRun

	listRuns   []model.ResearchRun
	listTotal  int64
	lastLimit  int
	lastOffset int

	byID map[uuid.UUID]*model.ResearchRun
}

func (f *fakeRunRepo) Create(_ context.Context, run *model.ResearchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRepo) List(_ context.Context, limit, offset int) ([]model.ResearchRun, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastLimit = limit
	f.lastOffset = offset
	return f.listRuns, f.listTotal, nil
}

func (f *fakeRunRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ResearchRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeRunRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeRunRepo) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeRunRepo) lastCreated() *model.ResearchRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

func newArchiveFixture(t *testing.T) (*fakeRunRepo, IArchiveService, IPublisherService) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &fakeRunRepo{byID: map[uuid.UUID]*model.ResearchRun{}}

	svc := NewArchiveService(pubSub, "research.test", repo, nopLogger{})
	require.NoError(t, svc.Consume(context.Background()))

	return repo, svc, NewPublisherService("research.test", pubSub)
}

func TestArchiveConsumePersistsPublishedRun(t *testing.T) {
	repo, _, pub := newArchiveFixture(t)

	event := events.ResearchCompleted{
		RunID:            uuid.New().String(),
		Query:            "impact of heat pumps on grid load",
		ReportType:       "research_report",
		Agent:            "🔬 Science Agent",
		Report:           "# Findings",
		Model:            "llama3",
		PromptTokens:     1200,
		CompletionTokens: 800,
		SourceURLs:       []string{"https://grid.example/report"},
		SubQueries:       []string{"heat pump adoption rate"},
		PDFPath:          "outputs/run.pdf",
		DocxPath:         "outputs/run.docx",
		DurationMs:       4200,
		OccurredAt:       time.Now(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return repo.createdCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	run := repo.lastCreated()
	assert.Equal(t, event.RunID, run.ID.String())
	assert.Equal(t, event.Query, run.Query)
	assert.Equal(t, event.Report, run.Report)
	assert.Equal(t, event.PromptTokens, run.PromptTokens)
	assert.Equal(t, []string(run.SourceURLs), event.SourceURLs)
	assert.Equal(t, event.PDFPath, run.PDFPath)
	assert.Equal(t, event.DurationMs, run.DurationMs)
}

func TestArchiveConsumeRetriesOnStorageError(t *testing.T) {
	repo, _, pub := newArchiveFixture(t)
	repo.failures = 1

	event := events.ResearchCompleted{RunID: uuid.New().String(), Query: "retry me"}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return repo.createdCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, repo.attemptCount(), 2, "nacked message should be redelivered")
}

func TestArchiveConsumeSkipsPoisonMessages(t *testing.T) {
	repo, _, pub := newArchiveFixture(t)

	// Neither of these can ever persist; both must be acked so the queue
	// keeps moving.
	require.NoError(t, pub.Publish(context.Background(), []byte("{not json")))
	badID, err := json.Marshal(events.ResearchCompleted{RunID: "not-a-uuid", Query: "bad id"})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), badID))

	good := events.ResearchCompleted{RunID: uuid.New().String(), Query: "good"}
	payload, err := json.Marshal(good)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return repo.createdCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "good", repo.lastCreated().Query)
	assert.Equal(t, 1, repo.attemptCount(), "poison messages never reach the repository")
}

func TestArchiveConsumeDefaultsMissingTimestamp(t *testing.T) {
	repo, _, pub := newArchiveFixture(t)

	event := events.ResearchCompleted{RunID: uuid.New().String(), Query: "no timestamp"}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return repo.createdCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, repo.lastCreated().CreatedAt.IsZero())
}

func TestArchiveHistoryClampsPagination(t *testing.T) {
	repo, svc, _ := newArchiveFixture(t)
	repo.listRuns = []model.ResearchRun{{ID: uuid.New(), Query: "q", Report: "full report text"}}
	repo.listTotal = 41

	res, err := svc.History(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)
	assert.Equal(t, int64(41), res.Total)
	require.Len(t, res.Runs, 1)
	assert.Empty(t, res.Runs[0].Report, "list view omits the report body")

	_, err = svc.History(context.Background(), 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastLimit)
	assert.Equal(t, 10, repo.lastOffset)
}

func TestArchiveDetail(t *testing.T) {
	repo, svc, _ := newArchiveFixture(t)

	id := uuid.New()
	repo.byID[id] = &model.ResearchRun{ID: id, Query: "stored", Report: "# Stored Report"}

	res, err := svc.Detail(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "stored", res.Query)
	assert.Equal(t, "# Stored Report", res.Report, "detail view keeps the report body")

	missing, err := svc.Detail(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
