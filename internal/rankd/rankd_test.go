package rankd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrank/config"
	"stockrank/pipeline"
	"stockrank/trading"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, name string) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return nil, pipeline.ErrNoData
	}
	return &pipeline.Result{Job: name, Path: "data/" + name + ".json"}, nil
}

func refresherAt(runner JobRunner, at time.Time) *Refresher {
	r := NewRefresher(runner, []string{"monsters", "sectors", "concepts"}, zerolog.Nop())
	r.now = func() time.Time { return at }
	return r
}

func TestRefreshSkippedDuringTradingSession(t *testing.T) {
	runner := &fakeRunner{}
	// 2024-03-04 周一 10:00
	r := refresherAt(runner, time.Date(2024, 3, 4, 10, 0, 0, 0, trading.CST))

	assert.Equal(t, 0, r.Refresh(context.Background()))
	assert.Empty(t, runner.calls)
}

func TestRefreshRunsAllJobsAfterClose(t *testing.T) {
	runner := &fakeRunner{fail: map[string]bool{"sectors": true}}
	r := refresherAt(runner, time.Date(2024, 3, 4, 16, 0, 0, 0, trading.CST))

	assert.Equal(t, 2, r.Refresh(context.Background()))
	assert.Equal(t, []string{"monsters", "sectors", "concepts"}, runner.calls)
}

func TestRefreshRunsOnWeekend(t *testing.T) {
	runner := &fakeRunner{}
	r := refresherAt(runner, time.Date(2024, 3, 9, 10, 0, 0, 0, trading.CST))
	assert.Equal(t, 3, r.Refresh(context.Background()))
}

func TestRefreshStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	r := refresherAt(runner, time.Date(2024, 3, 4, 20, 0, 0, 0, trading.CST))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, r.Refresh(ctx))
	assert.Empty(t, runner.calls)
}

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Run(context.Context, string) (*pipeline.Result, error) {
	b.started <- struct{}{}
	<-b.release
	return nil, errors.New("done")
}

func TestRefreshDoesNotOverlap(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRefresher(runner, []string{"monsters"}, zerolog.Nop())
	r.now = func() time.Time { return time.Date(2024, 3, 4, 20, 0, 0, 0, trading.CST) }

	done := make(chan struct{})
	go func() {
		r.Refresh(context.Background())
		close(done)
	}()
	<-runner.started

	assert.Equal(t, 0, r.Refresh(context.Background()))
	close(runner.release)
	<-done
}

func TestSchedule(t *testing.T) {
	r := NewRefresher(&fakeRunner{}, nil, zerolog.Nop())

	c, err := Schedule(context.Background(), "30 15 * * 1-5", r)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, trading.CST, c.Location())

	_, err = Schedule(context.Background(), "not a cron", r)
	assert.Error(t, err)
}

func TestNewApp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	app, err := NewApp(&cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"monsters", "sectors", "industry-avg", "concepts"}, app.Runner.Jobs())
	assert.NotNil(t, app.Query)
	assert.NotNil(t, app.Metrics.Handler())

	cfg.Basis = "weekly"
	_, err = NewApp(&cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestServeRejectsUnknownRefreshJob(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RefreshCron = "0 16 * * *"
	cfg.RefreshJobs = []string{"nope"}

	app, err := NewApp(&cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Error(t, app.Serve(context.Background()))
}
