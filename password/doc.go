// Package password implements one-way credential hashing for the
// authentication core.
//
// Hashing uses Argon2id with per-password random salts and an optional
// server-side pepper. Digests are encoded in the PHC string format so that
// parameters travel with the hash and can be strengthened over time;
// [Hasher.NeedsRehash] reports whether a stored digest was produced with
// weaker parameters than the active configuration.
//
// The pepper is concatenated with the plaintext before hashing. It is a
// deployment-wide secret, distinct from the per-password salt: a leaked
// digest database is not attackable offline without also compromising the
// pepper.
package password
