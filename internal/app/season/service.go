// Package season is the session collaborator around the settlement engine: it
// loads the shared season document, applies one mutation under the version check
// and fans the result out to live clients and webhooks.
package season

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"pocketpoker/internal/events"
	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
	"pocketpoker/internal/store"
)

const maxCASAttempts = 3

type Store interface {
	Get(ctx context.Context, id string) (*domain.Season, error)
	Create(ctx context.Context, s *domain.Season) error
	Save(ctx context.Context, s *domain.Season, prev int64) error
}

type Publisher interface {
	Publish(seasonID, event string, data any) events.StreamEvent
}

type Limiter interface {
	Allow(key string) bool
}

type Notifier interface {
	NotifyGameSettled(seasonID string, g domain.Game)
}

type Service struct {
	store    Store
	clock    quartz.Clock
	limiter  Limiter
	pub      Publisher
	notifier Notifier
	cfg      Config
}

type Option func(*Service)

func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLimiter(l Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(st Store, cfg Config, opts ...Option) *Service {
	if cfg.DefaultSeasonID == "" {
		cfg.DefaultSeasonID = domain.DefaultID
	}
	if cfg.AuditMax <= 0 {
		cfg.AuditMax = domain.DefaultAuditMax
	}
	if cfg.Location == nil {
		cfg.Location = domain.LoadLocation("")
	}
	if cfg.Policy == "" {
		cfg.Policy = settlement.EqualSplit
	}
	if cfg.PrizePolicy == "" {
		cfg.PrizePolicy = settlement.AllPlayers
	}
	s := &Service{store: st, clock: quartz.NewReal(), cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) seasonID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.cfg.DefaultSeasonID
	}
	return id
}

func (s *Service) newID() string {
	return store.NewIDAt(s.clock.Now())
}

// Get loads a season, creating an empty one on first read.
func (s *Service) Get(ctx context.Context, id string) (*domain.Season, error) {
	doc, err := s.load(ctx, s.seasonID(id))
	if err != nil {
		return nil, err
	}
	return s.decorate(doc), nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Season, error) {
	doc, err := s.store.Get(ctx, id)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	doc = domain.New(id, s.clock.Now())
	if err := s.store.Create(ctx, doc); err != nil {
		if errors.Is(err, store.ErrExists) {
			return s.store.Get(ctx, id)
		}
		return nil, err
	}
	log.Info().Str("season_id", id).Msg("season_created")
	return doc, nil
}

func (s *Service) decorate(doc *domain.Season) *domain.Season {
	next := domain.NextGameAt(s.clock.Now().In(s.cfg.Location))
	doc.NextGameAt = &next
	return doc
}

type mutation func(doc *domain.Season, now time.Time) (changed bool, err error)

// mutate runs fn against the latest document and stores the result under the
// version check. A pinned version fails fast on conflict; otherwise the whole
// load-apply-save cycle is retried.
func (s *Service) mutate(ctx context.Context, id string, ifMatch *int64, action string, fn mutation) (*domain.Season, error) {
	attempts := maxCASAttempts
	if ifMatch != nil {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		doc, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if ifMatch != nil && doc.Version != *ifMatch {
			metricVersionConflicts.Inc()
			return nil, ErrVersionMismatch
		}
		prev := doc.Version
		now := s.clock.Now()
		changed, err := fn(doc, now)
		if err != nil {
			return nil, err
		}
		if !changed {
			return s.decorate(doc), nil
		}
		doc.Touch(now)
		err = s.store.Save(ctx, doc, prev)
		if errors.Is(err, store.ErrVersionMismatch) {
			metricVersionConflicts.Inc()
			if attempt >= attempts {
				return nil, ErrVersionMismatch
			}
			log.Debug().Str("season_id", id).Int("attempt", attempt).Msg("season_cas_retry")
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("season_id", id).Int64("version", doc.Version).Str("action", action).Msg("season_saved")
		doc = s.decorate(doc)
		s.publish(id, events.SeasonUpdated, Change{Action: action, Version: doc.Version, Season: doc})
		return doc, nil
	}
}

func (s *Service) publish(id, event string, c Change) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(id, event, c)
}

func (s *Service) audit(doc *domain.Season, now time.Time, action string, a Actor, mod func(*domain.AuditEntry)) {
	e := domain.AuditEntry{ID: s.newID(), TS: now.UTC(), Action: action, ByName: a.ByName, DeviceID: a.DeviceID}
	if mod != nil {
		mod(&e)
	}
	doc.PushAudit(e, s.cfg.AuditMax)
}

func (s *Service) checkLock(doc *domain.Season, a Actor, now time.Time) error {
	if doc.Lock.BlocksDevice(a.DeviceID, now) {
		metricLockDenied.Inc()
		return &LockedError{Lock: *doc.Lock}
	}
	return nil
}

// AppendGame settles the given draft, or the stored draft when none is given, and
// appends the game record. The settled draft is cleared.
func (s *Service) AppendGame(ctx context.Context, req AppendGameRequest) (*domain.Season, *domain.Game, error) {
	id := s.seasonID(req.SeasonID)
	actor := req.Actor.normalized()
	policy := req.Policy
	if policy == "" {
		policy = s.cfg.Policy
	}
	prizePolicy := req.PrizePolicy
	if prizePolicy == "" {
		prizePolicy = s.cfg.PrizePolicy
	}

	var game domain.Game
	doc, err := s.mutate(ctx, id, req.IfMatch, domain.ActionAppendGame, func(doc *domain.Season, now time.Time) (bool, error) {
		if err := s.checkLock(doc, actor, now); err != nil {
			return false, err
		}
		draft := doc.Draft
		if req.Draft != nil {
			draft = domain.SanitizeDraft(req.Draft, s.cfg.Defaults, s.newID)
		}
		g, err := domain.BuildGame(draft, domain.GameOptions{
			ID:              s.newID(),
			Now:             now,
			Policy:          policy,
			PrizePolicy:     prizePolicy,
			AllowUnbalanced: req.AllowUnbalanced,
			ByName:          actor.ByName,
		})
		if err != nil {
			return false, err
		}
		doc.Games = append(doc.Games, g)
		doc.Draft = nil
		s.audit(doc, now, domain.ActionAppendGame, actor, func(e *domain.AuditEntry) {
			e.GameID = g.ID
			e.Players = len(g.Players)
		})
		game = g
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	metricGamesSettled.WithLabelValues(string(game.Policy)).Inc()
	log.Info().Str("season_id", id).Str("game_id", game.ID).Int("players", len(game.Players)).Int("txns", len(game.Txns)).Msg("game_settled")
	s.publish(id, events.GameSettled, Change{Action: domain.ActionAppendGame, Version: doc.Version, GameID: game.ID, Season: doc})
	if s.notifier != nil {
		s.notifier.NotifyGameSettled(id, game)
	}
	return doc, &game, nil
}

func (s *Service) DeleteGame(ctx context.Context, seasonID, gameID string, ifMatch *int64, actor Actor) (*domain.Season, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, ErrInvalidRequest
	}
	actor = actor.normalized()
	return s.mutate(ctx, s.seasonID(seasonID), ifMatch, domain.ActionDeleteGame, func(doc *domain.Season, now time.Time) (bool, error) {
		if err := s.checkLock(doc, actor, now); err != nil {
			return false, err
		}
		idx := doc.GameIndex(gameID)
		if idx < 0 {
			return false, ErrGameNotFound
		}
		doc.Games = append(doc.Games[:idx], doc.Games[idx+1:]...)
		s.audit(doc, now, domain.ActionDeleteGame, actor, func(e *domain.AuditEntry) { e.GameID = gameID })
		return true, nil
	})
}

// SaveDraft replaces the live draft. Each device may save a limited number of
// drafts per minute.
func (s *Service) SaveDraft(ctx context.Context, seasonID string, in *domain.DraftInput, ifMatch *int64, actor Actor) (*domain.Season, error) {
	if in == nil {
		return nil, ErrInvalidDraft
	}
	id := s.seasonID(seasonID)
	actor = actor.normalized()
	if s.limiter != nil && !s.limiter.Allow(id+":"+actor.DeviceID) {
		metricDraftRateLimited.Inc()
		log.Warn().Str("season_id", id).Str("device_id", actor.DeviceID).Msg("draft_rate_limited")
		return nil, ErrRateLimited
	}
	draft := domain.SanitizeDraft(in, s.cfg.Defaults, s.newID)
	return s.mutate(ctx, id, ifMatch, domain.ActionDraftSave, func(doc *domain.Season, now time.Time) (bool, error) {
		doc.Draft = draft
		s.audit(doc, now, domain.ActionDraftSave, actor, func(e *domain.AuditEntry) { e.Players = len(draft.Players) })
		return true, nil
	})
}

// SetLock acquires or releases the host lock. An expired lock is cleared first.
func (s *Service) SetLock(ctx context.Context, req LockRequest) (*domain.Season, error) {
	actor := req.Actor
	switch req.Action {
	case LockAcquire:
		if actor.ByName == "" || actor.DeviceID == "" {
			return nil, ErrInvalidRequest
		}
	case LockRelease:
		if actor.DeviceID == "" {
			return nil, ErrInvalidRequest
		}
	default:
		return nil, ErrInvalidRequest
	}
	return s.mutate(ctx, s.seasonID(req.SeasonID), nil, string(req.Action), func(doc *domain.Season, now time.Time) (bool, error) {
		changed := false
		if doc.Lock.Expired(now) {
			s.audit(doc, now, domain.ActionLockExpired, Actor{DeviceID: doc.Lock.DeviceID, ByName: doc.Lock.ByName}, nil)
			doc.Lock = nil
			changed = true
		}
		if req.Action == LockAcquire {
			if doc.Lock.Held(now) {
				metricLockDenied.Inc()
				return false, &LockedError{Lock: *doc.Lock}
			}
			doc.Lock = &domain.Lock{
				Active:   true,
				ByName:   actor.ByName,
				DeviceID: actor.DeviceID,
				LockedAt: now.UTC(),
				Until:    domain.NextMidnight(now, s.cfg.Location).UTC(),
			}
			s.audit(doc, now, domain.ActionLock, actor, nil)
			return true, nil
		}

		if doc.Lock == nil || !doc.Lock.Active {
			return changed, nil
		}
		if !(req.Force || s.cfg.AllowAnyUnlock || doc.Lock.Owner(actor.DeviceID, actor.ByName)) {
			metricLockDenied.Inc()
			return false, &LockedError{Lock: *doc.Lock}
		}
		doc.Lock = nil
		s.audit(doc, now, domain.ActionUnlock, actor.normalized(), func(e *domain.AuditEntry) {
			if req.Force {
				e.Detail = "force"
			}
		})
		return true, nil
	})
}

func (s *Service) MarkPayment(ctx context.Context, req PaymentRequest) (*domain.Season, error) {
	if strings.TrimSpace(req.GameID) == "" || strings.TrimSpace(req.Payer) == "" {
		return nil, ErrInvalidRequest
	}
	actor := req.Actor.normalized()
	return s.mutate(ctx, s.seasonID(req.SeasonID), nil, domain.ActionMarkPayment, func(doc *domain.Season, now time.Time) (bool, error) {
		idx := doc.GameIndex(req.GameID)
		if idx < 0 {
			return false, ErrGameNotFound
		}
		doc.Games[idx].MarkPayment(req.Payer, req.Paid, req.Method, now)
		s.audit(doc, now, domain.ActionMarkPayment, actor, func(e *domain.AuditEntry) {
			e.GameID = req.GameID
			e.Detail = req.Payer
		})
		return true, nil
	})
}

func (s *Service) UpsertProfile(ctx context.Context, req ProfileRequest) (*domain.Season, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	actor := req.Actor.normalized()
	return s.mutate(ctx, s.seasonID(req.SeasonID), nil, domain.ActionProfileUpsert, func(doc *domain.Season, now time.Time) (bool, error) {
		doc.Profiles[name] = domain.Profile{PayID: req.PayID, Avatar: req.Avatar, UpdatedAt: now.UTC()}
		s.audit(doc, now, domain.ActionProfileUpsert, actor, func(e *domain.AuditEntry) { e.Detail = name })
		return true, nil
	})
}
