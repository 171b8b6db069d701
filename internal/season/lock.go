package season

import "time"

// Lock is the cooperative host lock. It marks one device as the host until the
// next local midnight.
type Lock struct {
	Active   bool      `json:"active"`
	ByName   string    `json:"byName"`
	DeviceID string    `json:"deviceId"`
	LockedAt time.Time `json:"lockedAt"`
	Until    time.Time `json:"until"`
}

// Held reports whether the lock is active and unexpired at now.
func (l *Lock) Held(now time.Time) bool {
	return l != nil && l.Active && now.Before(l.Until)
}

// Expired reports an active lock whose until has passed.
func (l *Lock) Expired(now time.Time) bool {
	return l != nil && l.Active && !now.Before(l.Until)
}

// BlocksDevice reports whether a held lock belongs to a different device.
func (l *Lock) BlocksDevice(deviceID string, now time.Time) bool {
	return l.Held(now) && l.DeviceID != deviceID
}

// Owner reports whether deviceID or byName matches the lock holder.
func (l *Lock) Owner(deviceID, byName string) bool {
	if l == nil {
		return false
	}
	return (deviceID != "" && l.DeviceID == deviceID) || (byName != "" && l.ByName == byName)
}

// NextMidnight returns the first midnight in loc strictly after now.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// LoadLocation resolves name, falling back to a fixed UTC+10 zone when the tz
// database is unavailable.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = "Australia/Brisbane"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("UTC+10", 10*60*60)
	}
	return loc
}
