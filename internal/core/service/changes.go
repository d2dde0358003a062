package service

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// Change tracker scopes.
const (
	scopeCustomers = "pelanggan"
	scopeContracts = "kontrak"
)

func amScope(amID string) string {
	return scopeCustomers + ":am:" + amID
}

// touch records a mutation. The write already succeeded, so a tracker
// failure is only logged: the next poll falls back to updated_at.
func touch(ctx context.Context, t ports.ChangeTracker, log zerolog.Logger, at time.Time, scopes ...string) {
	if t == nil {
		return
	}
	if err := t.Touch(ctx, at, scopes...); err != nil {
		log.Warn().Err(err).Strs("scopes", scopes).Msg("change marker not updated")
	}
}

func latest(ts ...time.Time) time.Time {
	var max time.Time
	for _, t := range ts {
		if t.After(max) {
			max = t
		}
	}
	return max
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// safeName reduces an uploaded filename to its base name and makes it safe
// for a storage key.
func safeName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	return safeSegment(s)
}

// safeSegment replaces every run of characters outside [A-Za-z0-9._-].
func safeSegment(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "file"
	}
	return s
}
