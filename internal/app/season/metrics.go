package season

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGamesSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketpoker_games_settled_total",
		Help: "Games settled and appended to a season, by settlement policy.",
	}, []string{"policy"})
	metricVersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_version_conflicts_total",
		Help: "Season writes rejected by the version check.",
	})
	metricDraftRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_draft_rate_limited_total",
		Help: "Draft saves rejected by the per-device rate limit.",
	})
	metricLockDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketpoker_lock_denied_total",
		Help: "Requests refused because another device holds the host lock.",
	})
)
