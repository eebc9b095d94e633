// Package credential provides persistent storage for the OAuth credential
// record (refresh token, current access token, expiry bookkeeping).
//
// Two storage backends are supported with different deployment tradeoffs:
//   - File: local filesystem storage with atomic writes and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//
// Both backends persist the record as a single JSON document and rewrite it
// wholesale on every save; there are no partial-field updates.
package credential
