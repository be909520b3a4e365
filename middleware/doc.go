// Package middleware exposes an HTTP adapter for access-token enforcement
// built on top of arenaxauth.Service validation.
//
// [Guard] reads the Authorization header, calls Service.Validate, optionally
// applies claim-level security policy, and injects validated claims into the
// request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Service calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// Service.Validate.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Service).
//   - Access Redis (Service handles I/O).
//   - Make authorization decisions beyond pass/reject from validation.
package middleware
