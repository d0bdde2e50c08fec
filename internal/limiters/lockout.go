package limiters

import "time"

// Lockout decides when consecutive failed logins lock an account.
// Zero threshold disables locking entirely.
type Lockout struct {
	Threshold int
	Duration  time.Duration
}

// IsLocked reports whether a lock deadline is still in the future.
// A nil deadline means the account was never locked.
func (l Lockout) IsLocked(until *time.Time, now time.Time) bool {
	return until != nil && now.Before(*until)
}

// RecordFailure advances the failure counter and reports whether this
// failure crosses the threshold. When it does, lockUntil carries the
// new deadline to store on the account.
func (l Lockout) RecordFailure(failures int, now time.Time) (newFailures int, lockUntil *time.Time) {
	newFailures = failures + 1
	if l.Threshold > 0 && newFailures >= l.Threshold {
		t := now.Add(l.Duration)
		lockUntil = &t
	}
	return newFailures, lockUntil
}

// Expired reports whether a past lock window has fully elapsed, meaning
// the counter should reset on the next successful check.
func (l Lockout) Expired(until *time.Time, now time.Time) bool {
	return until != nil && !now.Before(*until)
}
