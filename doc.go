// Package arenaxauth is the ArenaX credential issuance and session-lifecycle
// core. It mints, validates, refreshes, and revokes signed bearer token
// pairs, rotates signing keys with a one-generation grace window, and keeps
// the server-side session state needed for revocation and abuse detection in
// a shared Redis store.
//
// The package is designed for concurrent server workloads: Service methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// arenaxauth is the public surface. It exposes [Service], [Builder],
// [Config], and value types (TokenPair, AnalyticsSnapshot). Token encoding
// and key rotation live in the jwt subpackage; Redis persistence lives in
// the session subpackage. The relational store, HTTP routing, and blockchain
// clients of the wider ArenaX backend are external collaborators and never
// appear here.
//
// # What this package must NOT do
//
//   - Store or verify passwords; credential proofing happens upstream.
//   - Evaluate permissions; the permission list rides inside the token
//     payload untouched, for downstream consumers.
//   - Retry store failures; transport errors surface to the caller, which
//     owns retry and backoff policy.
package arenaxauth
