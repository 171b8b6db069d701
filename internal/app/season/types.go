package season

import (
	"time"

	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
)

// Actor identifies the device and display name behind a request.
type Actor struct {
	DeviceID string
	ByName   string
}

func (a Actor) normalized() Actor {
	if a.DeviceID == "" {
		a.DeviceID = "unknown"
	}
	if a.ByName == "" {
		a.ByName = "Unknown"
	}
	return a
}

type Config struct {
	DefaultSeasonID string
	Defaults        domain.DraftDefaults
	AuditMax        int
	AllowAnyUnlock  bool
	Location        *time.Location
	Policy          settlement.Policy
	PrizePolicy     settlement.ContributionPolicy
}

type AppendGameRequest struct {
	SeasonID        string
	Draft           *domain.DraftInput
	Policy          settlement.Policy
	PrizePolicy     settlement.ContributionPolicy
	AllowUnbalanced bool
	IfMatch         *int64
	Actor           Actor
}

type LockAction string

const (
	LockAcquire LockAction = "lock"
	LockRelease LockAction = "unlock"
)

type LockRequest struct {
	SeasonID string
	Action   LockAction
	Force    bool
	Actor    Actor
}

type PaymentRequest struct {
	SeasonID string
	GameID   string
	Payer    string
	Paid     bool
	Method   string
	Actor    Actor
}

type ProfileRequest struct {
	SeasonID string
	Name     string
	PayID    string
	Avatar   string
	Actor    Actor
}

// Change is published to live clients after every successful mutation.
type Change struct {
	Action  string         `json:"action"`
	Version int64          `json:"version"`
	GameID  string         `json:"gameId,omitempty"`
	Season  *domain.Season `json:"season"`
}
