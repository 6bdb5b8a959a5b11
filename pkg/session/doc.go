// Package session handles console session lifecycle: opaque bearer tokens
// hashed before storage, session lookup with expiry, and logout cleanup of
// the cached principal snapshot and persisted tab state. OIDC ID-token
// verification supports restoring identity from the platform's IdP.
package session
