// Package jwt signs and verifies the two token classes issued by the
// authentication core.
//
// Access tokens are short-lived, self-contained assertions carrying the
// account's role snapshot and token version. Refresh tokens are long-lived
// and carry only the account subject and a session identifier (jti); the
// session registry decides whether that jti is still live.
//
// The two classes are signed with distinct secrets so that compromise of
// one does not compromise the other. Both embed issuer and audience claims
// that are enforced on parse, rejecting tokens minted for a different
// deployment.
package jwt
