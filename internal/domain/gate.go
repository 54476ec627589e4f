package domain

import (
	"context"
	"time"
)

// QuietHours is the nightly window during which pushes are deferred for users
// who opted in to night silence. Start and End are hours of day; the window
// may wrap midnight.
type QuietHours struct {
	Start int
	End   int
}

// DefaultQuietHours matches the app's historical night window.
var DefaultQuietHours = QuietHours{Start: 22, End: 6}

// Contains reports whether t falls inside the window.
func (q QuietHours) Contains(t time.Time) bool {
	h := t.Hour()
	if q.Start == q.End {
		return false
	}
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}

// PreferenceGate implements NotificationGate from stored user preferences
// plus a configured quiet-hours window.
type PreferenceGate struct {
	users UserStore
	quiet QuietHours
}

// NewPreferenceGate creates a PreferenceGate.
func NewPreferenceGate(users UserStore, quiet QuietHours) *PreferenceGate {
	return &PreferenceGate{users: users, quiet: quiet}
}

// ShouldSuppress reports whether the user opted out of push entirely.
func (g *PreferenceGate) ShouldSuppress(ctx context.Context, userID int64) (bool, error) {
	prefs, err := g.users.NotificationPrefs(ctx, userID)
	if err != nil {
		return false, err
	}
	return prefs.OptOut, nil
}

// ShouldDelay reports whether a push for this user must wait out the night:
// only during quiet hours, and only for users who opted in to night silence.
func (g *PreferenceGate) ShouldDelay(ctx context.Context, userID int64, now time.Time) (bool, error) {
	if !g.quiet.Contains(now) {
		return false, nil
	}
	prefs, err := g.users.NotificationPrefs(ctx, userID)
	if err != nil {
		return false, err
	}
	return prefs.OptOutNight, nil
}
