// Package auth implements the launcher's token and session lifecycle.
//
// The package reconciles two trust issuers: the first-party ("official")
// identity provider behind an OAuth public-client flow, and the community
// ("butter") fallback provider. It maintains four persisted caches with
// different staleness rules — the premium credential bundle, the
// offline-token store, and one JWKS cache per issuer — all best-effort:
// a missing or corrupt cache file never fails an operation, it only
// forces a network round trip.
//
// # Operations
//
//   - Login / Logout: obtain or discard the premium credential bundle via
//     the provider's OAuth device flow.
//   - EnsureAccessToken: serve a cached access token while it is outside
//     the 90 s expiry skew, refreshing through the OAuth refresh grant
//     otherwise. A failed refresh degrades to the previous token.
//   - ResolvePrimaryProfile: map the access token to the launcher-visible
//     identity, preferring the profile holding the base-game entitlement.
//   - CreateGameSession / FetchLaunchAuth: exchange the identity for
//     short-lived identity/session tokens. When the provider rejects a
//     cached profile as stale, the profile is re-resolved from the
//     network and the exchange retried exactly once.
//   - EnsureOfflineToken: issue and cache per-issuer offline tokens for
//     premium and community accounts.
//   - FetchAuthTokens: the community provider's username/uuid login.
//
// Every outbound request carries an explicit timeout and is cancellable
// through its context. Concurrent refreshes of the same credential bundle
// are serialized so a slow refresh can never overwrite a newer one.
package auth
