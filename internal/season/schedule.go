package season

import "time"

// NextGameAt returns the next Friday 17:00 in now's location. On a Friday it is the
// following week's game.
func NextGameAt(now time.Time) time.Time {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+days, 17, 0, 0, 0, now.Location())
}
