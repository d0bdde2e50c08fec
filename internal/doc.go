// Package internal contains helper utilities that are intentionally
// private to authcore: secure random generation, action-token hashing,
// and user-agent classification.
//
// # Sub-packages
//
//   - audit — async security-event dispatch (Dispatcher + Sink implementations)
//   - limiters — the failed-login lockout state machine
//   - metrics — lock-free operation counters
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
