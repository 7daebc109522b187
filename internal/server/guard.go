package server

import "time"

// Guard enforces the per-session abuse policies: a sliding message-burst
// window and a nudge cooldown. Both drop silently on violation so flooding
// clients get no timing oracle. State lives on the session and is only
// touched by that session's serialized event flow.
type Guard struct {
	Window   time.Duration
	Burst    int
	Cooldown time.Duration
}

// AllowMessage reports whether the session may send a message at now and
// records the send when allowed. Rejected sends are not recorded, so a
// flood does not extend its own penalty.
func (g Guard) AllowMessage(s *Session, now time.Time) bool {
	keep := s.msgTimes[:0]
	for _, t := range s.msgTimes {
		if now.Sub(t) < g.Window {
			keep = append(keep, t)
		}
	}
	s.msgTimes = keep
	if len(s.msgTimes) >= g.Burst {
		return false
	}
	s.msgTimes = append(s.msgTimes, now)
	return true
}

// AllowNudge reports whether the session may nudge at now, recording the
// nudge when allowed.
func (g Guard) AllowNudge(s *Session, now time.Time) bool {
	if !s.lastNudge.IsZero() && now.Sub(s.lastNudge) < g.Cooldown {
		return false
	}
	s.lastNudge = now
	return true
}
