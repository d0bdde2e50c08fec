// Package limiters holds the failed-login lockout state machine. The
// counter and lock deadline live on the account document, so the guard
// here is pure: it computes transitions, the engine persists them.
package limiters
