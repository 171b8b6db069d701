package notify

import (
	"slices"
	"strings"
)

type Router struct{}

func (r Router) MatchTargets(targets []Target, ev Event) []Target {
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if len(target.Seasons) > 0 && !slices.Contains(target.Seasons, ev.SeasonID) {
			continue
		}
		if !eventAllowed(target.Events, ev.Type) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func eventAllowed(allowlist []string, evType string) bool {
	if len(allowlist) == 0 {
		return true
	}
	evType = strings.ToLower(strings.TrimSpace(evType))
	for _, v := range allowlist {
		if v == "" {
			continue
		}
		if strings.ToLower(strings.TrimSpace(v)) == evType {
			return true
		}
	}
	return false
}
