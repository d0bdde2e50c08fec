// Package session models the refresh sessions embedded in an account
// document and the pure list operations the engine composes into the
// rotation protocol. Nothing here touches storage: callers read the
// account, transform its session list with these functions, and persist
// the result atomically.
package session
