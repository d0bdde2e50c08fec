// Package permission maps account roles to capability sets.
//
// The mapping is a fixed table compiled into an immutable [Resolver] at
// startup. Resolution is a pure function over the roles embedded in an
// access token, so a table change only affects tokens minted afterwards.
// The built-in [DefaultTable] encodes a strict hierarchy: every role's
// grant set contains the grants of the role below it.
package permission
