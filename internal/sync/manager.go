// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Triggers recorded on SyncResult.
const (
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
)

var (
	// ErrSyncRunning is returned when a run is already in progress.
	ErrSyncRunning = errors.New("catalog sync already running")

	// ErrNotStarted is returned by Trigger before Start.
	ErrNotStarted = errors.New("sync manager is not running")
)

// MovieStore is the persistence the import needs.
type MovieStore interface {
	ExistingTMDBIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	Insert(ctx context.Context, movie *models.Movie) error
}

// EventPublisher carries run progress to subscribers. *events.Bus
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType string, payload interface{}) error
}

// Manager schedules and runs catalog imports.
type Manager struct {
	movies    MovieStore
	client    tmdb.API
	cache     cache.Store
	cfg       config.SyncConfig
	genreTTL  time.Duration
	publisher EventPublisher

	scheduler *cron.Cron
	entryID   cron.EntryID

	// running guards against overlapping runs.
	running atomic.Bool

	mu      sync.RWMutex
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc
	lastRun *models.SyncResult
	wg      sync.WaitGroup
}

// NewManager creates a sync manager. store may be nil to disable genre caching.
func NewManager(movies MovieStore, client tmdb.API, store cache.Store, cfg *config.Config) *Manager {
	genreTTL := cfg.Cache.GenreTTL
	if genreTTL <= 0 {
		genreTTL = 24 * time.Hour
	}

	logging.Info().
		Bool("enabled", cfg.Sync.Enabled).
		Str("schedule", cfg.Sync.Schedule).
		Bool("on_startup", cfg.Sync.OnStartup).
		Int("max_pages", cfg.Sync.MaxPages).
		Msg("Sync manager config loaded")

	return &Manager{
		movies:   movies,
		client:   client,
		cache:    store,
		cfg:      cfg.Sync,
		genreTTL: genreTTL,
	}
}

// SetEventPublisher publishes run progress on events.TopicSyncProgress.
// Call before Start.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publisher = p
}

// broadcast publishes a progress snapshot when a publisher is attached.
// Publish failures are logged; they never fail the run.
func (m *Manager) broadcast(ctx context.Context, eventType string, result *models.SyncResult) {
	m.mu.RLock()
	pub := m.publisher
	m.mu.RUnlock()
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, events.TopicSyncProgress, eventType, models.SyncProgress{
		CorrelationID: logging.CorrelationIDFromContext(ctx),
		Trigger:       result.Trigger,
		Page:          result.Pages,
		TotalPages:    result.TotalPages,
		Inserted:      result.Inserted,
		Skipped:       result.Skipped,
		Error:         result.Error,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish sync progress")
	}
}

// Start registers the cron schedule (when enabled) and kicks off the startup
// run (when configured). It does not block.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}

	m.baseCtx, m.cancel = context.WithCancel(ctx)

	if m.cfg.Enabled {
		log := newCronLogger()
		m.scheduler = cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log)))
		id, err := m.scheduler.AddFunc(m.cfg.Schedule, func() {
			m.runLogged(TriggerSchedule)
		})
		if err != nil {
			m.cancel()
			m.mu.Unlock()
			return fmt.Errorf("invalid sync schedule %q: %w", m.cfg.Schedule, err)
		}
		m.entryID = id
		m.scheduler.Start()
		logging.Info().Str("schedule", m.cfg.Schedule).Msg("Catalog sync scheduled")
	} else {
		logging.Info().Msg("Scheduled catalog sync disabled (SYNC_ENABLED=false), manual trigger only")
	}

	m.started = true
	m.mu.Unlock()

	if m.cfg.Enabled && m.cfg.OnStartup {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runLogged(TriggerStartup)
		}()
	}
	return nil
}

// Stop cancels in-flight runs and waits for them and the scheduler to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.started = false
	scheduler := m.scheduler
	m.scheduler = nil
	m.cancel()
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// Trigger starts a manual run in the background. It returns ErrSyncRunning
// when a run is in progress.
func (m *Manager) Trigger() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.started {
		return ErrNotStarted
	}
	if !m.running.CompareAndSwap(false, true) {
		return ErrSyncRunning
	}

	ctx := m.baseCtx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.execute(ctx, TriggerManual); err != nil {
			logging.Warn().Err(err).Msg("Manual catalog sync failed")
		}
	}()
	return nil
}

// Run executes one import synchronously.
func (m *Manager) Run(ctx context.Context, trigger string) (*models.SyncResult, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrSyncRunning
	}
	return m.execute(ctx, trigger)
}

// Running reports whether an import is in progress.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Status reports schedule and last-run information.
func (m *Manager) Status() models.SyncStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := models.SyncStatus{
		Enabled: m.cfg.Enabled,
		Running: m.running.Load(),
		LastRun: m.lastRun,
	}
	if m.cfg.Enabled {
		status.Schedule = m.cfg.Schedule
	}
	if m.scheduler != nil {
		if next := m.scheduler.Entry(m.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

func (m *Manager) runLogged(trigger string) {
	m.mu.RLock()
	ctx := m.baseCtx
	m.mu.RUnlock()

	if _, err := m.Run(ctx, trigger); err != nil {
		if errors.Is(err, ErrSyncRunning) {
			logging.Info().Str("trigger", trigger).Msg("Catalog sync skipped, previous run still in progress")
			return
		}
		logging.Warn().Err(err).Str("trigger", trigger).Msg("Catalog sync failed")
	}
}

// execute runs an import. The caller must have set m.running.
func (m *Manager) execute(ctx context.Context, trigger string) (*models.SyncResult, error) {
	defer m.running.Store(false)
	metrics.SetSyncRunning(true)
	defer metrics.SetSyncRunning(false)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	result := &models.SyncResult{Trigger: trigger, StartedAt: time.Now().UTC()}
	log.Info().Str("trigger", trigger).Msg("Catalog sync started")
	m.broadcast(ctx, models.SyncEventStarted, result)

	err := m.importCatalog(ctx, result)

	result.FinishedAt = time.Now().UTC()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	if err != nil {
		result.Error = err.Error()
	}
	metrics.RecordSyncRun(result.Duration, result.Pages, result.Inserted, result.Skipped, err)

	m.mu.Lock()
	m.lastRun = result
	m.mu.Unlock()

	if err != nil {
		m.broadcast(ctx, models.SyncEventFailed, result)
	} else {
		m.broadcast(ctx, models.SyncEventCompleted, result)
	}

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("trigger", trigger).
		Int("pages", result.Pages).
		Int("total_pages", result.TotalPages).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Catalog sync finished")

	return result, err
}
