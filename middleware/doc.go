// Package middleware exposes HTTP adapters for request authentication and
// permission enforcement built on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] — bearer-token authentication via Engine.Authorize.
//   - [RequirePermission] — capability check against the resolved identity.
//   - [RequireRole] — coarse role check against the resolved identity.
//
// Guard reads the Authorization header, records the client IP and User-Agent
// on the request context, calls Engine.Authorize, and injects the validated
// [authcore.AccessIdentity] into the request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authorize and the engine's permission resolver.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the account store (Engine handles I/O).
//   - Make authorization decisions beyond what the identity already carries.
package middleware
