package season

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"

	"pocketpoker/internal/events"
	"pocketpoker/internal/money"
	"pocketpoker/internal/ratelimit"
	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
	"pocketpoker/internal/store"
)

var (
	brisbane = time.FixedZone("AEST", 10*60*60)
	host     = Actor{DeviceID: "dev-host", ByName: "Host"}
	guest    = Actor{DeviceID: "dev-guest", ByName: "Guest"}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(seasonID, event string, data any) events.StreamEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return events.StreamEvent{Event: event, SeasonID: seasonID, Data: data}
}

type recordingNotifier struct {
	games []domain.Game
}

func (n *recordingNotifier) NotifyGameSettled(_ string, g domain.Game) {
	n.games = append(n.games, g)
}

// flakyStore reports a version conflict for the first failSaves saves.
type flakyStore struct {
	*store.Memory
	failSaves int
	saves     int
}

func (f *flakyStore) Save(ctx context.Context, s *domain.Season, prev int64) error {
	f.saves++
	if f.saves <= f.failSaves {
		return store.ErrVersionMismatch
	}
	return f.Memory.Save(ctx, s, prev)
}

func newTestService(t *testing.T, cfg Config, opts ...Option) (*Service, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 3, 6, 19, 0, 0, 0, brisbane))
	if cfg.Location == nil {
		cfg.Location = brisbane
	}
	if cfg.Defaults == (domain.DraftDefaults{}) {
		cfg.Defaults = domain.DraftDefaults{BuyInAmount: money.FromFloat(50), PrizeAmount: money.FromFloat(20)}
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewService(store.NewMemory(), cfg, opts...), clock
}

func balancedDraft() *domain.DraftInput {
	return &domain.DraftInput{Players: []domain.DraftPlayerInput{
		{Name: "Ann", BuyIns: 1, CashOut: money.FromFloat(80)},
		{Name: "Bob", BuyIns: 1, CashOut: money.FromFloat(20)},
	}}
}

func version(v int64) *int64 {
	return &v
}

func TestGetCreatesSeason(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	doc, err := svc.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.SeasonID != domain.DefaultID || doc.Version != 0 || len(doc.Games) != 0 {
		t.Fatalf("unexpected new season: %+v", doc)
	}
	want := time.Date(2026, 3, 13, 17, 0, 0, 0, brisbane)
	if doc.NextGameAt == nil || !doc.NextGameAt.Equal(want) {
		t.Fatalf("nextGameAt = %v, want %v", doc.NextGameAt, want)
	}
}

func TestDraftThenAppendGame(t *testing.T) {
	pub := &recordingPublisher{}
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, Config{}, WithPublisher(pub), WithNotifier(notifier))
	ctx := context.Background()

	doc, err := svc.SaveDraft(ctx, "s1", balancedDraft(), nil, host)
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if doc.Version != 1 || doc.Draft == nil || doc.Draft.Players[0].ID == "" {
		t.Fatalf("draft not saved: %+v", doc)
	}

	doc, game, err := svc.AppendGame(ctx, AppendGameRequest{SeasonID: "s1", IfMatch: version(1), Actor: host})
	if err != nil {
		t.Fatalf("AppendGame: %v", err)
	}
	if doc.Version != 2 || len(doc.Games) != 1 || doc.Draft != nil {
		t.Fatalf("unexpected season after append: %+v", doc)
	}
	if len(game.Txns) != 1 || game.Txns[0] != (settlement.Transaction{From: "Bob", To: "Ann", Amount: 3000}) {
		t.Fatalf("unexpected txns: %+v", game.Txns)
	}
	if doc.Audit[0].Action != domain.ActionAppendGame || doc.Audit[0].GameID != game.ID || doc.Audit[1].Action != domain.ActionDraftSave {
		t.Fatalf("unexpected audit: %+v", doc.Audit)
	}
	if len(notifier.games) != 1 || notifier.games[0].ID != game.ID {
		t.Fatalf("notifier not called: %+v", notifier.games)
	}
	want := []string{events.SeasonUpdated, events.SeasonUpdated, events.GameSettled}
	if len(pub.events) != len(want) {
		t.Fatalf("published %v, want %v", pub.events, want)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Fatalf("published %v, want %v", pub.events, want)
		}
	}

	if _, _, err := svc.AppendGame(ctx, AppendGameRequest{SeasonID: "s1", Actor: host}); !errors.Is(err, ErrEmptyGame) {
		t.Fatalf("appending without a draft should fail with ErrEmptyGame, got %v", err)
	}
}

func TestAppendGameVersionMismatch(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, _, err := svc.AppendGame(ctx, AppendGameRequest{Draft: balancedDraft(), IfMatch: version(4), Actor: host}); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	doc, err := svc.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Version != 0 || len(doc.Games) != 0 {
		t.Fatalf("rejected write must not change the season: %+v", doc)
	}
}

func TestAppendGameUnbalanced(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	draft := balancedDraft()
	draft.Players[0].CashOut = money.FromFloat(75)

	if _, _, err := svc.AppendGame(ctx, AppendGameRequest{Draft: draft, Actor: host}); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
	_, game, err := svc.AppendGame(ctx, AppendGameRequest{Draft: draft, AllowUnbalanced: true, Policy: settlement.Proportional, Actor: host})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if game.Override == nil || game.Override.Diff != money.FromFloat(-5) || game.Policy != settlement.Proportional {
		t.Fatalf("unexpected game: %+v", game)
	}
}

func TestLockBlocksOtherDevicesUntilMidnight(t *testing.T) {
	svc, clock := newTestService(t, Config{AllowAnyUnlock: false})
	ctx := context.Background()

	doc, err := svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: host})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	wantUntil := time.Date(2026, 3, 7, 0, 0, 0, 0, brisbane)
	if !doc.Lock.Until.Equal(wantUntil) {
		t.Fatalf("until = %v, want %v", doc.Lock.Until, wantUntil)
	}

	_, _, err = svc.AppendGame(ctx, AppendGameRequest{Draft: balancedDraft(), Actor: guest})
	var locked *LockedError
	if !errors.As(err, &locked) || !errors.Is(err, ErrLocked) || locked.Lock.ByName != "Host" {
		t.Fatalf("expected LockedError from host, got %v", err)
	}
	if _, _, err := svc.AppendGame(ctx, AppendGameRequest{Draft: balancedDraft(), Actor: host}); err != nil {
		t.Fatalf("lock holder must be able to save: %v", err)
	}
	if _, err := svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: guest}); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock should fail, got %v", err)
	}

	clock.Set(wantUntil)
	if _, _, err := svc.AppendGame(ctx, AppendGameRequest{Draft: balancedDraft(), Actor: guest}); err != nil {
		t.Fatalf("expired lock must not block: %v", err)
	}
	doc, err = svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: guest})
	if err != nil {
		t.Fatalf("lock after expiry: %v", err)
	}
	if doc.Lock.ByName != "Guest" || doc.Audit[1].Action != domain.ActionLockExpired {
		t.Fatalf("expired lock not replaced: lock=%+v audit=%+v", doc.Lock, doc.Audit[:2])
	}
}

func TestUnlockPermissions(t *testing.T) {
	svc, _ := newTestService(t, Config{AllowAnyUnlock: false})
	ctx := context.Background()
	lock := func() {
		if _, err := svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: host}); err != nil {
			t.Fatalf("lock: %v", err)
		}
	}

	lock()
	if _, err := svc.SetLock(ctx, LockRequest{Action: LockRelease, Actor: guest}); !errors.Is(err, ErrLocked) {
		t.Fatalf("guest unlock should be refused, got %v", err)
	}
	doc, err := svc.SetLock(ctx, LockRequest{Action: LockRelease, Force: true, Actor: guest})
	if err != nil || doc.Lock != nil {
		t.Fatalf("forced unlock failed: %v %+v", err, doc)
	}

	lock()
	if _, err := svc.SetLock(ctx, LockRequest{Action: LockRelease, Actor: Actor{DeviceID: "other-phone", ByName: "Host"}}); err != nil {
		t.Fatalf("same name should unlock: %v", err)
	}

	before, _ := svc.Get(ctx, "")
	after, err := svc.SetLock(ctx, LockRequest{Action: LockRelease, Actor: guest})
	if err != nil || after.Version != before.Version {
		t.Fatalf("unlocking an open season must be a no-op: %v %d -> %d", err, before.Version, after.Version)
	}

	if _, err := svc.SetLock(ctx, LockRequest{Action: "grab", Actor: host}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("unknown action: %v", err)
	}
	if _, err := svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: Actor{DeviceID: "d"}}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("lock without name: %v", err)
	}
}

func TestAllowAnyUnlock(t *testing.T) {
	svc, _ := newTestService(t, Config{AllowAnyUnlock: true})
	ctx := context.Background()
	if _, err := svc.SetLock(ctx, LockRequest{Action: LockAcquire, Actor: host}); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if doc, err := svc.SetLock(ctx, LockRequest{Action: LockRelease, Actor: guest}); err != nil || doc.Lock != nil {
		t.Fatalf("any device should unlock: %v", err)
	}
}

func TestSaveDraftRateLimit(t *testing.T) {
	clock := quartz.NewMock(t)
	limiter, err := ratelimit.New(30, 16, clock)
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	svc, _ := newTestService(t, Config{}, WithLimiter(limiter))
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		if _, err := svc.SaveDraft(ctx, "", balancedDraft(), nil, host); err != nil {
			t.Fatalf("save %d: %v", i+1, err)
		}
	}
	if _, err := svc.SaveDraft(ctx, "", balancedDraft(), nil, host); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("save 31 should be limited, got %v", err)
	}
	if _, err := svc.SaveDraft(ctx, "", balancedDraft(), nil, guest); err != nil {
		t.Fatalf("other device must not be limited: %v", err)
	}
	if _, err := svc.SaveDraft(ctx, "", nil, nil, guest); !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("nil draft: %v", err)
	}
}

func TestAuditCapped(t *testing.T) {
	svc, _ := newTestService(t, Config{AuditMax: 5})
	ctx := context.Background()
	var doc *domain.Season
	var err error
	for i := 0; i < 8; i++ {
		if doc, err = svc.SaveDraft(ctx, "", balancedDraft(), nil, host); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if len(doc.Audit) != 5 || doc.Version != 8 {
		t.Fatalf("audit len %d version %d", len(doc.Audit), doc.Version)
	}
}

func TestMutationRetriesConflicts(t *testing.T) {
	clock := quartz.NewMock(t)
	flaky := &flakyStore{Memory: store.NewMemory(), failSaves: 2}
	svc := NewService(flaky, Config{Location: brisbane}, WithClock(clock))
	ctx := context.Background()

	doc, err := svc.UpsertProfile(ctx, ProfileRequest{Name: "Ann", PayID: "ann@pay", Actor: host})
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if doc.Profiles["Ann"].PayID != "ann@pay" || flaky.saves != 3 {
		t.Fatalf("unexpected result: saves=%d profiles=%+v", flaky.saves, doc.Profiles)
	}

	flaky.failSaves, flaky.saves = 1, 0
	if _, err := svc.DeleteGame(ctx, "", "missing", version(1), host); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing game: %v", err)
	}
	if _, err := svc.UpsertProfile(ctx, ProfileRequest{Name: "Bob", Actor: host}); err != nil {
		t.Fatalf("single conflict should be retried: %v", err)
	}

	flaky.failSaves, flaky.saves = 5, 0
	if _, err := svc.UpsertProfile(ctx, ProfileRequest{Name: "Cat", Actor: host}); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("persistent conflict should surface, got %v", err)
	}
	if flaky.saves != maxCASAttempts {
		t.Fatalf("saves = %d, want %d", flaky.saves, maxCASAttempts)
	}
}

func TestDeleteGameAndPayments(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	draft := balancedDraft()
	draft.PrizeFromPot = true
	_, game, err := svc.AppendGame(ctx, AppendGameRequest{Draft: draft, Actor: host})
	if err != nil {
		t.Fatalf("AppendGame: %v", err)
	}
	if game.PerHead == nil || game.PerHead.Winner != "Ann" {
		t.Fatalf("expected per-head tracker: %+v", game.PerHead)
	}

	doc, err := svc.MarkPayment(ctx, PaymentRequest{GameID: game.ID, Payer: "Bob", Paid: true, Method: "cash", Actor: guest})
	if err != nil {
		t.Fatalf("MarkPayment: %v", err)
	}
	if !doc.Games[0].PerHead.Payments["Bob"].Paid {
		t.Fatalf("payment not recorded: %+v", doc.Games[0].PerHead)
	}
	if _, err := svc.MarkPayment(ctx, PaymentRequest{GameID: "nope", Payer: "Bob"}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing game: %v", err)
	}
	if _, err := svc.MarkPayment(ctx, PaymentRequest{GameID: game.ID}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing payer: %v", err)
	}

	doc, err = svc.DeleteGame(ctx, "", game.ID, version(doc.Version), host)
	if err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if len(doc.Games) != 0 || doc.Audit[0].Action != domain.ActionDeleteGame {
		t.Fatalf("game not deleted: %+v", doc)
	}
	if _, err := svc.UpsertProfile(ctx, ProfileRequest{Name: "  "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank profile name: %v", err)
	}
}
