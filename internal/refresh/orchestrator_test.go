package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/radonlens/internal/cache"
	"github.com/panbanda/radonlens/pkg/document"
	"github.com/panbanda/radonlens/pkg/models"
	"github.com/panbanda/radonlens/pkg/radon"
)

const (
	docID  = "/src/app.py"
	source = "def handler(event):\n    return event\n"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CheckVersion(ctx context.Context) (radon.Version, error) {
	args := m.Called()
	v, _ := args.Get(0).(radon.Version)
	return v, args.Error(1)
}

func (m *mockGateway) QueryComplexity(ctx context.Context, path string) ([]models.Rating, error) {
	args := m.Called(path)
	r, _ := args.Get(0).([]models.Rating)
	return r, args.Error(1)
}

func (m *mockGateway) QueryMaintainability(ctx context.Context, path string) (models.Maintainability, error) {
	args := m.Called(path)
	mi, _ := args.Get(0).(models.Maintainability)
	return mi, args.Error(1)
}

func (m *mockGateway) QuerySourceInfo(ctx context.Context, path string) (models.SourceInfo, error) {
	args := m.Called(path)
	info, _ := args.Get(0).(models.SourceInfo)
	return info, args.Error(1)
}

type recordingNotifier struct {
	mu         sync.Mutex
	remediated []*radon.Error
	errors     []string
}

func (n *recordingNotifier) Remediate(_ context.Context, err *radon.Error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.remediated = append(n.remediated, err)
}

func (n *recordingNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

type signals struct {
	mu  sync.Mutex
	ids []string
}

func (s *signals) record(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}

func (s *signals) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

type fixture struct {
	gw       *mockGateway
	buffers  *document.Store
	cache    *cache.Cache
	notifier *recordingNotifier
	signals  *signals
	orch     *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gw:       &mockGateway{},
		buffers:  document.NewStore(),
		cache:    cache.New(),
		notifier: &recordingNotifier{},
		signals:  &signals{},
	}
	f.orch = New(f.gw, f.buffers, f.cache, WithNotifier(f.notifier))
	f.orch.OnChange(f.signals.record)
	f.buffers.Open(docID, source)
	return f
}

func handlerRating(name string) models.Rating {
	return models.Rating{Kind: models.KindFunction, Name: name, Rank: "A", Line: 1, Column: 0, EndLine: 2, Complexity: 1}
}

func (f *fixture) expectHealthyTool(ratings []models.Rating) {
	f.gw.On("CheckVersion").Return(radon.Version{5, 1, 0}, nil)
	f.gw.On("QueryComplexity", docID).Return(ratings, nil)
	f.gw.On("QueryMaintainability", docID).Return(models.Maintainability{Index: 72.5, Rank: "A"}, nil)
	f.gw.On("QuerySourceInfo", docID).Return(models.SourceInfo{LOC: 2, SLOC: 2, LLOC: 2}, nil)
}

func TestHandle_FullRefreshEvents(t *testing.T) {
	for _, kind := range []EventKind{Opened, Saved, ActiveChanged} {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)
			f.expectHealthyTool([]models.Rating{handlerRating("handler")})

			require.NoError(t, f.orch.Handle(context.Background(), Event{Kind: kind, Document: docID}))
			f.orch.Wait()

			snap, ok := f.cache.Snapshot(docID)
			require.True(t, ok)
			require.Len(t, snap.Ratings, 1)
			require.NotNil(t, snap.Ratings[0].Range)
			assert.Equal(t, models.Range{End: models.Position{Line: 0, Character: 3}}, *snap.Ratings[0].Range)
			assert.Equal(t, 72.5, snap.Maintainability.Index)
			assert.Equal(t, 2, snap.SourceInfo.LOC)
			assert.Equal(t, 1, f.signals.count())
			assert.Equal(t, Idle, f.orch.State(docID))
		})
	}
}

func TestHandle_RefreshWithNoBlocksStillCaches(t *testing.T) {
	f := newFixture(t)
	f.expectHealthyTool([]models.Rating{})

	require.NoError(t, f.orch.Refresh(context.Background(), docID))

	ratings, ok := f.cache.Ratings(docID)
	require.True(t, ok)
	assert.Empty(t, ratings)
	assert.Equal(t, 1, f.signals.count())
}

func TestHandle_UnresolvableRatingsDropped(t *testing.T) {
	f := newFixture(t)
	ghost := handlerRating("ghost")
	ghost.Line = 40
	f.expectHealthyTool([]models.Rating{handlerRating("handler"), ghost})

	require.NoError(t, f.orch.Refresh(context.Background(), docID))

	ratings, _ := f.cache.Ratings(docID)
	require.Len(t, ratings, 1)
	assert.Equal(t, "handler", ratings[0].Name)
}

func TestHandle_EditedClearsRatingsAndSignals(t *testing.T) {
	f := newFixture(t)
	f.expectHealthyTool([]models.Rating{handlerRating("handler")})
	require.NoError(t, f.orch.Refresh(context.Background(), docID))

	require.NoError(t, f.orch.Handle(context.Background(), Event{Kind: Edited, Document: docID}))

	_, ok := f.cache.Ratings(docID)
	assert.False(t, ok)
	_, ok = f.cache.Maintainability(docID)
	assert.True(t, ok)
	assert.Equal(t, 2, f.signals.count())
	f.gw.AssertNumberOfCalls(t, "CheckVersion", 1)
}

func TestHandle_ClosedEvictsWithoutSignal(t *testing.T) {
	f := newFixture(t)
	f.expectHealthyTool([]models.Rating{handlerRating("handler")})
	require.NoError(t, f.orch.Refresh(context.Background(), docID))

	require.NoError(t, f.orch.Handle(context.Background(), Event{Kind: Closed, Document: docID}))

	_, ok := f.cache.Maintainability(docID)
	assert.False(t, ok)
	_, ok = f.cache.SourceInfo(docID)
	assert.False(t, ok)
	assert.Equal(t, 1, f.signals.count())
}

func TestHandle_UnknownEvent(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.orch.Handle(context.Background(), Event{Kind: EventKind(42), Document: docID}))
}

func TestRefresh_RemediableFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code radon.ErrorCode
	}{
		{"tool not found", radon.NewError(radon.ToolNotFound, `Couldn't find executable "radon".`, nil), radon.ToolNotFound},
		{"old version", radon.RequireVersion(radon.Version{5, 0}), radon.UnsupportedToolVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gw.On("CheckVersion").Return(radon.Version(nil), tt.err)

			err := f.orch.Refresh(context.Background(), docID)
			require.Error(t, err)

			require.Len(t, f.notifier.remediated, 1)
			assert.Equal(t, tt.code, f.notifier.remediated[0].Code)
			labels := []string{}
			for _, fix := range f.notifier.remediated[0].SuggestedFixes {
				labels = append(labels, fix.Label)
			}
			assert.Equal(t, []string{"Edit settings", "Install Radon"}, labels)
			assert.Empty(t, f.notifier.errors)
			assert.Equal(t, 0, f.cache.Len())
			assert.Equal(t, 0, f.signals.count())
			f.gw.AssertNotCalled(t, "QueryComplexity", docID)
		})
	}
}

func TestRefresh_QueryFailureKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture(t)
	f.cache.SetSnapshot(docID, models.Snapshot{
		Ratings:         []models.Rating{handlerRating("old")},
		Maintainability: models.Maintainability{Index: 50, Rank: "A"},
	})

	f.gw.On("CheckVersion").Return(radon.Version{5, 1}, nil)
	f.gw.On("QueryComplexity", docID).Return([]models.Rating{handlerRating("handler")}, nil)
	f.gw.On("QueryMaintainability", docID).Return(models.Maintainability{},
		radon.NewError(radon.ToolInvocationFailed, "radon mi failed", errors.New("exit status 1")))
	f.gw.On("QuerySourceInfo", docID).Return(models.SourceInfo{}, nil)

	require.Error(t, f.orch.Refresh(context.Background(), docID))

	assert.Empty(t, f.notifier.remediated)
	require.Len(t, f.notifier.errors, 1)
	assert.Contains(t, f.notifier.errors[0], "radon mi failed")

	ratings, ok := f.cache.Ratings(docID)
	require.True(t, ok)
	assert.Equal(t, "old", ratings[0].Name)
	assert.Equal(t, 0, f.signals.count())
}

func TestRefresh_NewerRefreshSupersedesOlder(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})

	f.gw.On("CheckVersion").Return(radon.Version{5, 1}, nil)
	f.gw.On("QueryComplexity", docID).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Rating{handlerRating("stale")}, nil).Once()
	f.gw.On("QueryComplexity", docID).Return([]models.Rating{handlerRating("fresh")}, nil).Once()
	f.gw.On("QueryMaintainability", docID).Return(models.Maintainability{Index: 30, Rank: "A"}, nil)
	f.gw.On("QuerySourceInfo", docID).Return(models.SourceInfo{}, nil)

	done := make(chan error, 1)
	go func() { done <- f.orch.Refresh(context.Background(), docID) }()
	<-started
	assert.Equal(t, Querying, f.orch.State(docID))

	require.NoError(t, f.orch.Refresh(context.Background(), docID))
	close(release)
	require.NoError(t, <-done)

	ratings, ok := f.cache.Ratings(docID)
	require.True(t, ok)
	require.Len(t, ratings, 1)
	assert.Equal(t, "fresh", ratings[0].Name)
	assert.Equal(t, 1, f.signals.count())
}

func TestRefresh_CloseDuringRefreshDiscardsResult(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})

	f.gw.On("CheckVersion").Return(radon.Version{5, 1}, nil)
	f.gw.On("QueryComplexity", docID).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Rating{handlerRating("handler")}, nil)
	f.gw.On("QueryMaintainability", docID).Return(models.Maintainability{Index: 30, Rank: "A"}, nil)
	f.gw.On("QuerySourceInfo", docID).Return(models.SourceInfo{}, nil)

	require.NoError(t, f.orch.Handle(context.Background(), Event{Kind: Opened, Document: docID}))
	<-started
	require.NoError(t, f.orch.Handle(context.Background(), Event{Kind: Closed, Document: docID}))
	close(release)
	f.orch.Wait()

	assert.Equal(t, 0, f.cache.Len())
	assert.Equal(t, 0, f.signals.count())
}

func TestHandle_OpenCloseChurnLeavesNoState(t *testing.T) {
	f := newFixture(t)
	f.expectHealthyTool([]models.Rating{handlerRating("handler")})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		f.buffers.Open(docID, source)
		require.NoError(t, f.orch.Handle(ctx, Event{Kind: Opened, Document: docID}))
		f.buffers.Close(docID)
		require.NoError(t, f.orch.Handle(ctx, Event{Kind: Closed, Document: docID}))
	}
	f.orch.Wait()

	f.orch.mu.Lock()
	remaining := len(f.orch.docs)
	f.orch.mu.Unlock()
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, f.cache.Len())
	assert.Equal(t, Idle, f.orch.State(docID))
}

func TestRefresh_ClosedDocumentRunsNoQueries(t *testing.T) {
	f := newFixture(t)
	f.buffers.Close(docID)

	require.NoError(t, f.orch.Refresh(context.Background(), docID))
	f.gw.AssertNotCalled(t, "CheckVersion")
	assert.Equal(t, 0, f.cache.Len())
	assert.Equal(t, 0, f.signals.count())
}

func TestParseEventKind(t *testing.T) {
	for k, name := range eventNames {
		got, err := ParseEventKind(name)
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseEventKind("renamed")
	assert.Error(t, err)
}
