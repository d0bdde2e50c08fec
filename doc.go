// Package authcore is the authentication and session core of a
// multi-tenant learning platform: credential hashing, JWT issuance and
// rotation, per-account refresh-session bookkeeping, login lockout,
// email verification, password reset, and role-based permission
// resolution.
//
// The package is embeddable: it owns no HTTP routes and no database.
// Hosts implement [AccountStore] (or use the bundled accountstore
// implementations) and [NotificationSender], then build an [Engine]:
//
//	engine, err := authcore.New().
//		WithConfig(cfg).
//		WithStore(store).
//		WithNotifier(mailer).
//		Build()
//
// Every engine operation takes a context and returns either a typed
// result or one of the package-level sentinel errors, matched with
// errors.Is.
package authcore
