// Package session provides Redis-backed persistence for server-side token
// state: one JSON record per active session, a per-user index of session
// ids, and the revocation blacklist keyed by token id.
//
// # Storage layout
//
// Session records live under "session:<session_id>" as JSON-serialized
// [SessionInfo]; revocation records live under "blacklisted:<jti>" with the
// sentinel value "1". Both carry a TTL equal to the refresh-token lifetime,
// the longest any token of either kind can live, so a record always outlives
// every token it could shadow. The per-user index set "session_user:<uid>"
// is maintained pipelined with session writes and deletes.
//
// # Architecture boundaries
//
// This package owns the [Store] and [Blacklist] plus the [SessionInfo]
// model. It does NOT interpret tokens, verify signatures, or enforce
// lifecycle policy; those responsibilities belong to the Service.
package session
