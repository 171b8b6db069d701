package notify

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"pocketpoker/internal/events"
	"pocketpoker/internal/notify/platforms"
	"pocketpoker/internal/season"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager fans settled games out to webhook targets on a small worker pool.
// Delivery is best effort: failures are retried with exponential backoff and a
// per-target circuit breaker stops hammering an endpoint that keeps failing.
type Manager struct {
	cfg      Config
	router   Router
	adapters map[string]platforms.Adapter
	clock    quartz.Clock

	dispatchCh chan job
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

type Option func(*Manager)

func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithAdapter(a platforms.Adapter) Option {
	return func(m *Manager) {
		m.adapters[a.Name()] = a
	}
}

func NewManager(cfg Config, opts ...Option) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	m := &Manager{
		cfg:    cfg,
		router: Router{},
		adapters: map[string]platforms.Adapter{
			"discord": platforms.NewDiscordAdapter(client),
			"feishu":  platforms.NewFeishuAdapter(client),
		},
		clock:        quartz.NewReal(),
		dispatchCh:   make(chan job, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done, m.clock)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("targets", len(m.cfg.Targets)).Int("workers", m.cfg.Workers).Msg("notify_started")
	return nil
}

// NotifyGameSettled never blocks the caller; a full queue drops the message.
func (m *Manager) NotifyGameSettled(seasonID string, g season.Game) {
	if !m.cfg.Enabled {
		return
	}
	ev := Event{Type: events.GameSettled, SeasonID: seasonID}
	targets := m.router.MatchTargets(m.currentTargets(), ev)
	if len(targets) == 0 {
		return
	}
	msg := FormatGameSettled(seasonID, g)
	for _, target := range targets {
		if !m.enqueue(job{Target: target, Event: ev, Message: msg}) {
			metricDroppedTotal.Inc()
			log.Warn().Str("season_id", seasonID).Str("game_id", g.ID).Str("platform", target.Platform).Msg("notify_queue_full")
		}
	}
}

func (m *Manager) enqueue(j job) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- j:
		metricQueuedTotal.Inc()
		metricQueueLen.Set(float64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}

func (m *Manager) currentTargets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Target, len(m.cfg.Targets))
	copy(out, m.cfg.Targets)
	return out
}
