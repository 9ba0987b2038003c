package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/temperature-dashboard/internal/i18n"
	"github.com/i474232898/temperature-dashboard/internal/observability"
	"github.com/i474232898/temperature-dashboard/internal/store"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// --- mocks ---

type mockSource struct {
	rows  []temperature.RawRow
	err   error
	calls atomic.Int32
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Load(_ context.Context) ([]temperature.RawRow, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

// gatedSource blocks each load until the test releases it, so loads can be
// completed in any order.
type gatedSource struct {
	mu      sync.Mutex
	gates   []chan gateResult
	started chan struct{}
}

type gateResult struct {
	rows []temperature.RawRow
	err  error
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}, 8)}
}

func (g *gatedSource) Name() string { return "gated" }

func (g *gatedSource) Load(ctx context.Context) ([]temperature.RawRow, error) {
	gate := make(chan gateResult, 1)
	g.mu.Lock()
	g.gates = append(g.gates, gate)
	g.mu.Unlock()
	g.started <- struct{}{}

	select {
	case res := <-gate:
		return res.rows, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSource) release(i int, rows []temperature.RawRow) {
	g.finish(i, gateResult{rows: rows})
}

func (g *gatedSource) fail(i int, err error) {
	g.finish(i, gateResult{err: err})
}

func (g *gatedSource) finish(i int, res gateResult) {
	g.mu.Lock()
	gate := g.gates[i]
	g.mu.Unlock()
	gate <- res
}

// stuckSource ignores cancellation until unblock is closed.
type stuckSource struct {
	started chan struct{}
	unblock chan struct{}
}

func (s *stuckSource) Name() string { return "stuck" }

func (s *stuckSource) Load(_ context.Context) ([]temperature.RawRow, error) {
	s.started <- struct{}{}
	<-s.unblock
	return nil, errors.New("gave up")
}

func raw(month, day, maxTemp, minTemp string) temperature.RawRow {
	return temperature.RawRow{
		temperature.ColumnMonth:   month,
		temperature.ColumnDay:     day,
		temperature.ColumnMaxTemp: maxTemp,
		temperature.ColumnMinTemp: minTemp,
	}
}

var januaryRows = []temperature.RawRow{
	raw("1", "1", "5", "-2"),
	raw("1", "2", "8", "0"),
	raw("1", "3", "oops", "0"),
}

var testNow = time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)

func newTestController(t *testing.T, src temperature.Source) (*Controller, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	c := New(Config{
		Language:    i18n.EN,
		LoadTimeout: time.Second,
		Clock:       clockwork.NewFakeClockAt(testNow),
	}, src, store.NewMemoryStore(), slog.Default(), metrics)
	return c, metrics
}

func f(v float64) *float64 { return &v }

// --- tests ---

func TestController_InitialState(t *testing.T) {
	c, _ := newTestController(t, &mockSource{})

	snap := c.Snapshot()
	assert.Equal(t, ViewState{Granularity: temperature.Monthly, Month: 1, Language: i18n.EN}, snap.State)
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Nil(t, snap.Line)
	assert.Nil(t, snap.Bar)
	assert.False(t, snap.HasSeries())
}

func TestController_RefreshPublishesMonthlySeries(t *testing.T) {
	src := &mockSource{rows: januaryRows}
	c, metrics := newTestController(t, src)

	var published []Snapshot
	c.Subscribe(func(s Snapshot) { published = append(published, s) })

	require.NoError(t, c.Refresh(context.Background()))

	require.Len(t, published, 1)
	snap := published[0]
	assert.Equal(t, StatusReady, snap.Status)
	require.True(t, snap.HasSeries())
	assert.Equal(t, 2, snap.Records)
	assert.Equal(t, uint64(1), snap.Generation)
	require.NotNil(t, snap.LoadedAt)
	assert.Equal(t, testNow, *snap.LoadedAt)

	assert.Equal(t, 12, snap.Line.Len())
	assert.Equal(t, f(8), snap.Line.MaxValues[0])
	assert.Equal(t, f(-2), snap.Line.MinValues[0])
	assert.Nil(t, snap.Line.MaxValues[1])
	assert.Equal(t, snap.Line, snap.Bar)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RowsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsRejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DatasetRecords))
}

func TestController_DailyView(t *testing.T) {
	c, _ := newTestController(t, &mockSource{rows: januaryRows})
	require.NoError(t, c.Refresh(context.Background()))

	snap, err := c.SetGranularity(temperature.Daily)
	require.NoError(t, err)

	assert.Equal(t, []string{"1/1", "1/2"}, snap.Line.Labels)
	assert.Equal(t, []*float64{f(5), f(8)}, snap.Line.MaxValues)
	assert.Equal(t, []*float64{f(-2), f(0)}, snap.Line.MinValues)
	assert.Equal(t, 12, snap.Bar.Len(), "bar chart stays monthly")

	snap, err = c.SetMonth(3)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Line.Len())
	assert.NotNil(t, snap.Line.Labels)
}

func TestController_MonthPickInMonthlyViewIsKept(t *testing.T) {
	c, _ := newTestController(t, &mockSource{rows: januaryRows})
	require.NoError(t, c.Refresh(context.Background()))

	before := c.Snapshot()
	snap, err := c.SetMonth(2)
	require.NoError(t, err)
	assert.Equal(t, before.Line, snap.Line, "monthly view is unaffected")
	assert.Equal(t, 2, snap.State.Month)

	snap, err = c.SetGranularity(temperature.Daily)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Month, "month survives the granularity switch")
	assert.Equal(t, 0, snap.Line.Len())

	snap, err = c.SetGranularity(temperature.Monthly)
	require.NoError(t, err)
	snap, err = c.SetGranularity(temperature.Daily)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Month)
}

func TestController_TransitionsNeverReload(t *testing.T) {
	src := &mockSource{rows: januaryRows}
	c, _ := newTestController(t, src)
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, int32(1), src.calls.Load())

	_, err := c.SetGranularity(temperature.Daily)
	require.NoError(t, err)
	_, err = c.SetMonth(5)
	require.NoError(t, err)
	_, err = c.SetLanguage(i18n.FR)
	require.NoError(t, err)
	c.ToggleLanguage()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestController_LanguageChangeOnlyRelabels(t *testing.T) {
	c, _ := newTestController(t, &mockSource{rows: januaryRows})
	require.NoError(t, c.Refresh(context.Background()))

	en := c.Snapshot()
	fr, err := c.SetLanguage(i18n.FR)
	require.NoError(t, err)

	assert.Equal(t, "January", en.Line.Labels[0])
	assert.Equal(t, "Janvier", fr.Line.Labels[0])
	assert.Equal(t, "Janvier", fr.Bar.Labels[0])
	assert.Equal(t, en.Line.MaxValues, fr.Line.MaxValues)
	assert.Equal(t, en.Line.MinValues, fr.Line.MinValues)
	assert.Equal(t, "January", en.Line.Labels[0], "earlier snapshot is not mutated")

	back := c.ToggleLanguage()
	assert.Equal(t, i18n.EN, back.State.Language)
}

func TestController_InvalidInput(t *testing.T) {
	c, _ := newTestController(t, &mockSource{})

	_, err := c.SetMonth(0)
	require.ErrorIs(t, err, ErrInvalidMonth)
	_, err = c.SetMonth(13)
	require.ErrorIs(t, err, ErrInvalidMonth)
	_, err = c.SetGranularity("weekly")
	require.ErrorIs(t, err, ErrInvalidGranularity)
	_, err = c.SetLanguage("DE")
	require.ErrorIs(t, err, ErrInvalidLanguage)

	assert.Equal(t, DefaultViewState(i18n.EN), c.State())
}

func TestController_TransitionsPublishWhileLoading(t *testing.T) {
	c, _ := newTestController(t, &mockSource{})

	var count int
	c.Subscribe(func(s Snapshot) {
		count++
		assert.Equal(t, StatusLoading, s.Status)
		assert.Nil(t, s.Line)
	})

	_, err := c.SetGranularity(temperature.Daily)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestController_LoadFailure(t *testing.T) {
	src := &mockSource{err: errors.New("connection refused")}
	c, metrics := newTestController(t, src)

	err := c.Refresh(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, StatusLoadFailed, snap.Status)
	assert.Contains(t, snap.LastError, "connection refused")
	assert.Nil(t, snap.Line)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("error")))
}

func TestController_FailedRefreshKeepsDataset(t *testing.T) {
	src := &mockSource{rows: januaryRows}
	c, _ := newTestController(t, src)
	require.NoError(t, c.Refresh(context.Background()))

	src.err = errors.New("timeout")
	require.Error(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.True(t, snap.HasSeries())
	assert.Equal(t, "timeout", snap.LastError)

	src.err = nil
	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, c.Snapshot().LastError)
}

func TestController_StaleLoadDoesNotOverwrite(t *testing.T) {
	src := newGatedSource()
	c, metrics := newTestController(t, src)

	first := c.Reload(context.Background())
	<-src.started
	second := c.Reload(context.Background())
	<-src.started
	require.Greater(t, second, first)

	// The newer load finishes first, then the older one straggles in.
	src.release(1, []temperature.RawRow{raw("2", "1", "10", "1")})
	src.release(0, []temperature.RawRow{raw("1", "1", "99", "-99")})
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, second, snap.Generation)
	require.True(t, snap.HasSeries())
	assert.Nil(t, snap.Line.MaxValues[0], "stale January data was dropped")
	assert.Equal(t, f(10), snap.Line.MaxValues[1])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("stale")))
}

func TestController_StandaloneSeries(t *testing.T) {
	c, _ := newTestController(t, &mockSource{rows: januaryRows})

	_, err := c.MonthlySeries(i18n.EN)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, c.Refresh(context.Background()))

	monthly, err := c.MonthlySeries(i18n.FR)
	require.NoError(t, err)
	assert.Equal(t, "Janvier", monthly.Labels[0])

	daily, err := c.DailySeries(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1/1", "1/2"}, daily.Labels)

	_, err = c.DailySeries(0)
	require.ErrorIs(t, err, ErrInvalidMonth)

	assert.Equal(t, DefaultViewState(i18n.EN), c.State(), "standalone series leave the view alone")
}

func TestController_StaleFailureKeepsFreshState(t *testing.T) {
	src := newGatedSource()
	c, metrics := newTestController(t, src)

	c.Reload(context.Background())
	<-src.started
	second := c.Reload(context.Background())
	<-src.started

	src.release(1, januaryRows)
	src.fail(0, errors.New("connection reset"))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, second, snap.Generation)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("stale")))
	assert.Zero(t, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("error")))
}

func TestController_ReadsDatasetThroughStore(t *testing.T) {
	st := store.NewMemoryStore()
	c := New(Config{Language: i18n.EN, Clock: clockwork.NewFakeClockAt(testNow)},
		&mockSource{rows: januaryRows}, st, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, c.Refresh(context.Background()))

	ds, err := st.Get()
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, ds.Generation, snap.Generation)
	assert.Equal(t, len(ds.Records), snap.Records)

	// A dataset saved directly to the store is what the series are derived from.
	gen := st.Issue()
	_, err = st.Save(gen, []temperature.Record{{Month: 4, Day: 1, MaxTemp: 20, MinTemp: 10}}, testNow)
	require.NoError(t, err)

	monthly, err := c.MonthlySeries(i18n.EN)
	require.NoError(t, err)
	assert.Nil(t, monthly.MaxValues[0])
	assert.Equal(t, f(20), monthly.MaxValues[3])
}

func TestController_ShutdownCancelsLoads(t *testing.T) {
	src := newGatedSource()
	c, _ := newTestController(t, src)

	c.Reload(context.Background())
	<-src.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	snap := c.Snapshot()
	assert.Equal(t, StatusLoadFailed, snap.Status)
	assert.Contains(t, snap.LastError, context.Canceled.Error())
}

func TestController_ShutdownBoundedByContext(t *testing.T) {
	src := &stuckSource{started: make(chan struct{}, 1), unblock: make(chan struct{})}
	c, _ := newTestController(t, src)

	c.Reload(context.Background())
	<-src.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Shutdown(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(src.unblock)
	c.Wait()
}
