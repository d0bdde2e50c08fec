// Package accountstore bundles two authcore.AccountStore
// implementations: Memory for tests and single-process embedding, and
// Redis for shared deployments. Both honor the same contract — unique
// email/username/phone/external-id indexes on Create and a document
// version compare-and-swap on Save, so the engine's read-modify-write
// loop never loses a concurrent update.
package accountstore
