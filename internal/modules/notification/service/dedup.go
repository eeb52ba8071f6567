package service

import (
	"time"

	"anoa.com/apotekpos/internal/model"
)

// ShouldAdmit decides whether a candidate passes the cooldown filter.
// The candidate is rejected when recent history holds an unread notification
// with the same dedup key created inside the cooldown window. When several
// entries share the key, only the most recent one governs the decision.
//
// Pure decision function: the caller supplies history (re-read on every
// dispatch, never cached) and persists the outcome. Two concurrent dispatches
// can both pass before either persists; that relaxation is accepted and
// narrowed by a Redis SetNX guard in the dispatcher when Redis is available.
func ShouldAdmit(candidate *model.Notification, history []model.Notification, cooldown time.Duration, now time.Time) bool {
	var latest *model.Notification
	for i := range history {
		if history[i].DedupKey != candidate.DedupKey {
			continue
		}
		if latest == nil || history[i].CreatedAt.After(latest.CreatedAt) {
			latest = &history[i]
		}
	}

	if latest == nil {
		return true
	}
	if latest.IsRead {
		return true
	}
	return now.Sub(latest.CreatedAt) >= cooldown
}
