package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/temperature-dashboard/internal/i18n"
	"github.com/i474232898/temperature-dashboard/internal/observability"
	"github.com/i474232898/temperature-dashboard/internal/store"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

// DatasetStore is the generation-guarded dataset cache the controller reads
// from and writes to.
type DatasetStore interface {
	Issue() uint64
	IsCurrent(gen uint64) bool
	Save(gen uint64, records []temperature.Record, at time.Time) (store.Dataset, error)
	Get() (store.Dataset, error)
}

// Config holds the controller's tunables.
type Config struct {
	Language    i18n.Language
	LoadTimeout time.Duration
	Clock       clockwork.Clock
}

// Controller owns the view state and the derived series. All state changes
// are serialized; each one recomputes the series from the cached dataset and
// publishes a Snapshot to subscribers before returning.
type Controller struct {
	mu sync.Mutex

	state     ViewState
	status    Status
	lastErr   error
	line      *temperature.Series
	bar       *temperature.Series
	updatedAt time.Time

	subscribers []func(Snapshot)

	source      temperature.Source
	store       DatasetStore
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	loadTimeout time.Duration

	inflight sync.WaitGroup
	// base is cancelled by Shutdown and bounds every load.
	base   context.Context
	cancel context.CancelFunc
}

// New creates a Controller in the loading state. No load is started; call
// Reload or Refresh.
func New(cfg Config, source temperature.Source, st DatasetStore, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base, cancel := context.WithCancel(context.Background())
	return &Controller{
		base:        base,
		cancel:      cancel,
		state:       DefaultViewState(cfg.Language),
		status:      StatusLoading,
		source:      source,
		store:       st,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		loadTimeout: timeout,
		updatedAt:   clock.Now(),
	}
}

// Subscribe registers fn to receive every published Snapshot. fn runs while
// the controller lock is held and must not call back into the controller.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// State returns the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the latest published view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetGranularity switches the line chart between monthly and daily views.
// The selected month is kept. No reload is triggered.
func (c *Controller) SetGranularity(g temperature.Granularity) (Snapshot, error) {
	if !g.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
	}
	return c.update(func(s *ViewState) { s.Granularity = g }), nil
}

// SetMonth selects the month shown by the daily view. In the monthly view
// the choice is stored and takes effect once the view switches to daily.
func (c *Controller) SetMonth(month int) (Snapshot, error) {
	if month < 1 || month > 12 {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return c.update(func(s *ViewState) { s.Month = month }), nil
}

// SetLanguage changes the display language. The cached dataset is
// language-invariant, so only the aggregation is re-run.
func (c *Controller) SetLanguage(lang i18n.Language) (Snapshot, error) {
	if !lang.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}
	return c.update(func(s *ViewState) { s.Language = lang }), nil
}

// ToggleLanguage flips between EN and FR.
func (c *Controller) ToggleLanguage() Snapshot {
	return c.update(func(s *ViewState) { s.Language = s.Language.Toggle() })
}

func (c *Controller) update(mutate func(*ViewState)) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state
	mutate(&c.state)
	c.logger.Debug("view state changed", "from", before, "to", c.state)

	c.recomputeLocked()
	return c.publishLocked()
}

// MonthlySeries aggregates the cached dataset by month in lang, independent
// of the view state.
func (c *Controller) MonthlySeries(lang i18n.Language) (temperature.Series, error) {
	records, err := c.records()
	if err != nil {
		return temperature.Series{}, err
	}
	return temperature.AggregateMonthly(records, lang), nil
}

// DailySeries returns the daily points of month from the cached dataset,
// independent of the view state.
func (c *Controller) DailySeries(month int) (temperature.Series, error) {
	if month < 1 || month > 12 {
		return temperature.Series{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	records, err := c.records()
	if err != nil {
		return temperature.Series{}, err
	}
	return temperature.AggregateDaily(records, month), nil
}

func (c *Controller) records() ([]temperature.Record, error) {
	ds, err := c.store.Get()
	if err != nil {
		return nil, err
	}
	return ds.Records, nil
}

// Reload starts a dataset load in the background and returns its
// generation. The load outlives ctx cancellation; it is bounded by the
// configured load timeout and cancelled by Shutdown.
func (c *Controller) Reload(ctx context.Context) uint64 {
	gen := c.store.Issue()
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		_ = c.load(context.WithoutCancel(ctx), gen)
	}()
	return gen
}

// Refresh loads the dataset synchronously. It returns store.ErrStale when a
// newer load was issued before this one completed.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, c.store.Issue())
}

// Wait blocks until every load started by Reload has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Shutdown cancels in-flight loads and waits for them to return, or for ctx
// to end, whichever comes first.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for dataset loads: %w", ctx.Err())
	}
}

func (c *Controller) load(ctx context.Context, gen uint64) error {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	stop := context.AfterFunc(c.base, cancel)
	defer stop()

	logger := c.logger.With("load_id", uuid.NewString(), "generation", gen, "source", c.source.Name())
	logger.Info("dataset load started")
	start := c.clock.Now()

	rows, err := c.source.Load(ctx)
	c.metrics.DatasetLoadDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return c.failed(logger, gen, err)
	}

	records, stats := temperature.ValidateWithStats(rows)
	c.metrics.RowsAccepted.Add(float64(stats.Accepted))
	c.metrics.RowsRejected.Add(float64(stats.Rejected))
	if stats.Rejected > 0 {
		logger.Debug("rows rejected by validation", "rejected", stats.Rejected, "accepted", stats.Accepted)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ds, err := c.store.Save(gen, records, c.clock.Now())
	if errors.Is(err, store.ErrStale) {
		c.metrics.DatasetLoads.WithLabelValues("stale").Inc()
		logger.Info("dataset load superseded, discarding result")
		return err
	}
	if err != nil {
		return err
	}

	c.status = StatusReady
	c.lastErr = nil

	c.metrics.DatasetLoads.WithLabelValues("success").Inc()
	c.metrics.DatasetRecords.Set(float64(len(ds.Records)))
	c.metrics.DatasetGeneration.Set(float64(ds.Generation))
	logger.Info("dataset loaded", "records", len(ds.Records), "rejected", stats.Rejected)

	c.recomputeLocked()
	c.publishLocked()
	return nil
}

// failed records a load error unless a newer load has been issued since. A
// dataset that is already held stays in use.
func (c *Controller) failed(logger *slog.Logger, gen uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.store.IsCurrent(gen) {
		c.metrics.DatasetLoads.WithLabelValues("stale").Inc()
		logger.Info("dataset load superseded", "error", err)
		return store.ErrStale
	}

	c.metrics.DatasetLoads.WithLabelValues("error").Inc()
	logger.Error("dataset load failed", "error", err)

	c.lastErr = err
	if _, getErr := c.store.Get(); getErr != nil {
		c.status = StatusLoadFailed
	}
	c.updatedAt = c.clock.Now()
	c.publishLocked()
	return err
}

func (c *Controller) recomputeLocked() {
	c.updatedAt = c.clock.Now()
	ds, err := c.store.Get()
	if err != nil {
		c.line, c.bar = nil, nil
		return
	}

	line := temperature.Aggregate(ds.Records, c.state.Granularity, c.state.Month, c.state.Language)
	bar := temperature.AggregateMonthly(ds.Records, c.state.Language)
	c.line, c.bar = &line, &bar
	c.metrics.SeriesComputed.WithLabelValues(string(c.state.Granularity)).Inc()
}

func (c *Controller) publishLocked() Snapshot {
	snap := c.snapshotLocked()
	for _, fn := range c.subscribers {
		fn(snap)
	}
	return snap
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     c.state,
		Status:    c.status,
		Line:      c.line,
		Bar:       c.bar,
		UpdatedAt: c.updatedAt,
	}
	if ds, err := c.store.Get(); err == nil {
		loadedAt := ds.LoadedAt
		snap.Generation = ds.Generation
		snap.Records = len(ds.Records)
		snap.LoadedAt = &loadedAt
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}
