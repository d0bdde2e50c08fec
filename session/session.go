package session

import (
	"sort"
	"time"
)

// DeviceInfo describes the client that opened a session. Informational
// only; no invariant depends on it.
type DeviceInfo struct {
	DeviceType string `json:"deviceType,omitempty"`
	OS         string `json:"os,omitempty"`
	Browser    string `json:"browser,omitempty"`
	IP         string `json:"ip,omitempty"`
}

// Session is one live refresh grant. ID is the jti carried by the
// paired refresh token; the raw token itself is never stored.
type Session struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Device    DeviceInfo `json:"device"`
}

// New builds a session record expiring ttl from now.
func New(jti string, now time.Time, ttl time.Duration, device DeviceInfo) Session {
	return Session{
		ID:        jti,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Device:    device,
	}
}

// Expired reports whether the session's grant has lapsed.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Find returns the session with the given jti, if present.
func Find(list []Session, jti string) (Session, bool) {
	for _, s := range list {
		if s.ID == jti {
			return s, true
		}
	}
	return Session{}, false
}

// Remove returns a copy of list without the session named by jti, and
// whether anything was removed. The input slice is never mutated.
func Remove(list []Session, jti string) ([]Session, bool) {
	out := make([]Session, 0, len(list))
	removed := false
	for _, s := range list {
		if s.ID == jti {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

// Append adds s to a copy of list, dropping any existing entry with the
// same jti first, then pruning expired entries. When maxSessions > 0
// and the result would exceed it, the oldest sessions are evicted until
// it fits.
func Append(list []Session, s Session, now time.Time, maxSessions int) []Session {
	out := make([]Session, 0, len(list)+1)
	for _, existing := range list {
		if existing.ID == s.ID || existing.Expired(now) {
			continue
		}
		out = append(out, existing)
	}
	out = append(out, s)

	if maxSessions > 0 && len(out) > maxSessions {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		out = out[len(out)-maxSessions:]
	}
	return out
}

// ActiveNewestFirst returns the unexpired sessions ordered most recent
// first, for session-list displays.
func ActiveNewestFirst(list []Session, now time.Time) []Session {
	out := make([]Session, 0, len(list))
	for _, s := range list {
		if !s.Expired(now) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
