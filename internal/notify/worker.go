package notify

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

var errCircuitOpen = errors.New("circuit_open")

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case j := <-m.dispatchCh:
			metricQueueLen.Set(float64(len(m.dispatchCh)))
			m.processJob(ctx, j)
		}
	}
}

func (m *Manager) processJob(ctx context.Context, j job) {
	adapter := m.adapters[j.Target.Platform]
	if adapter == nil {
		metricDroppedTotal.Inc()
		log.Warn().Str("platform", j.Target.Platform).Msg("notify_unknown_platform")
		return
	}

	if err := m.beforeSend(j.key(), m.clock.Now()); err != nil {
		metricCircuitOpenTotal.Inc()
		m.retryOrDrop(j, err)
		return
	}

	err := adapter.Send(ctx, j.Target.Endpoint, j.Target.Secret, j.Message)
	if err != nil {
		metricFailedTotal.WithLabelValues(adapter.Name()).Inc()
		m.afterFailure(j.key(), m.clock.Now())
		m.retryOrDrop(j, err)
		return
	}

	metricSentTotal.WithLabelValues(adapter.Name()).Inc()
	m.afterSuccess(j.key())
}

func (m *Manager) retryOrDrop(j job, err error) bool {
	if j.Attempt >= m.cfg.RetryMax {
		metricDroppedTotal.Inc()
		log.Warn().Err(err).
			Str("season_id", j.Event.SeasonID).
			Str("platform", j.Target.Platform).
			Int("attempt", j.Attempt).
			Msg("notify_dropped")
		return false
	}
	j.Attempt++
	metricRetryTotal.Inc()
	delay := m.cfg.RetryBase * time.Duration(1<<(j.Attempt-1))
	m.retryQ.Enqueue(j, delay)
	return true
}

func (m *Manager) beforeSend(key string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerByKey[key]
	if !state.openUntil.IsZero() && now.Before(state.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (m *Manager) afterFailure(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerByKey[key]
	state.consecutiveFailures++
	if state.consecutiveFailures >= m.cfg.FailureThreshold {
		state.openUntil = now.Add(m.cfg.CircuitOpenDuration)
		state.consecutiveFailures = 0
	}
	m.breakerByKey[key] = state
}

func (m *Manager) afterSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerByKey[key] = breakerState{}
}

type retryQueue struct {
	out   chan<- job
	done  <-chan struct{}
	clock quartz.Clock
}

func newRetryQueue(out chan<- job, done <-chan struct{}, clock quartz.Clock) *retryQueue {
	return &retryQueue{out: out, done: done, clock: clock}
}

func (q *retryQueue) Enqueue(j job, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	q.clock.AfterFunc(delay, func() {
		select {
		case <-q.done:
			return
		case q.out <- j:
			metricQueueLen.Set(float64(len(q.out)))
		}
	})
}
