// Package season models the shared season document that every client edits: the
// settled game history, the live draft, player profiles, the host lock and an audit
// trail. All functions are pure; persistence and concurrency live in the store and
// app layers.
package season

import (
	"time"

	"pocketpoker/internal/money"
)

const (
	DefaultID       = "default"
	DefaultAuditMax = 200
)

type Season struct {
	SeasonID  string             `json:"seasonId"`
	Version   int64              `json:"version"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Games     []Game             `json:"games"`
	Profiles  map[string]Profile `json:"profiles"`
	Draft     *Draft             `json:"draft"`
	Lock      *Lock              `json:"lock"`
	Audit     []AuditEntry       `json:"audit"`
	// NextGameAt is derived on read and never persisted.
	NextGameAt *time.Time `json:"nextGameAt,omitempty"`
}

type Profile struct {
	PayID     string    `json:"payid"`
	Avatar    string    `json:"avatar"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AuditEntry struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Action   string    `json:"action"`
	ByName   string    `json:"byName"`
	DeviceID string    `json:"deviceId"`
	GameID   string    `json:"gameId,omitempty"`
	Players  int       `json:"players,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Audit actions.
const (
	ActionDraftSave     = "draft-save"
	ActionAppendGame    = "append-game"
	ActionDeleteGame    = "delete-game"
	ActionLock          = "lock"
	ActionUnlock        = "unlock"
	ActionLockExpired   = "lock-expired"
	ActionMarkPayment   = "mark-payment"
	ActionProfileUpsert = "profile-upsert"
)

// New returns an empty season at version 0.
func New(id string, now time.Time) *Season {
	if id == "" {
		id = DefaultID
	}
	return &Season{
		SeasonID:  id,
		UpdatedAt: now.UTC(),
		Games:     []Game{},
		Profiles:  map[string]Profile{},
		Audit:     []AuditEntry{},
	}
}

// Normalize replaces nil collections so the document always serialises with
// arrays and objects.
func (s *Season) Normalize() {
	if s.Games == nil {
		s.Games = []Game{}
	}
	if s.Profiles == nil {
		s.Profiles = map[string]Profile{}
	}
	if s.Audit == nil {
		s.Audit = []AuditEntry{}
	}
}

// Touch bumps the version and the update timestamp. Every mutation calls it once.
func (s *Season) Touch(now time.Time) {
	s.Version++
	s.UpdatedAt = now.UTC()
}

// PushAudit prepends e and truncates the log to max entries.
func (s *Season) PushAudit(e AuditEntry, max int) {
	if max <= 0 {
		max = DefaultAuditMax
	}
	s.Audit = append([]AuditEntry{e}, s.Audit...)
	if len(s.Audit) > max {
		s.Audit = s.Audit[:max]
	}
}

func (s *Season) GameIndex(id string) int {
	for i := range s.Games {
		if s.Games[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so a failed compare-and-swap never leaks a half-applied
// mutation into a cached document.
func (s *Season) Clone() *Season {
	if s == nil {
		return nil
	}
	out := *s
	out.Games = make([]Game, len(s.Games))
	for i, g := range s.Games {
		out.Games[i] = g.clone()
	}
	out.Profiles = make(map[string]Profile, len(s.Profiles))
	for k, v := range s.Profiles {
		out.Profiles[k] = v
	}
	out.Audit = cloneSlice(s.Audit)
	if s.Draft != nil {
		d := *s.Draft
		d.Players = cloneSlice(s.Draft.Players)
		out.Draft = &d
	}
	if s.Lock != nil {
		l := *s.Lock
		out.Lock = &l
	}
	if s.NextGameAt != nil {
		t := *s.NextGameAt
		out.NextGameAt = &t
	}
	return &out
}

// Totals sums the cash movements of a game. Diff is zero for a balanced game.
type Totals struct {
	BuyIns   money.Cents `json:"buyIns"`
	CashOuts money.Cents `json:"cashOuts"`
	Diff     money.Cents `json:"diff"`
}

func (t Totals) Balanced() bool {
	return t.Diff == 0
}
