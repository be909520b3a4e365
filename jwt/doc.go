// Package jwt issues and verifies the signed bearer tokens of the ArenaX
// platform and owns the signing-key rotation window. Verification is strict:
// signing method, issuer, and audience are all enforced, and malformed input
// is rejected before any cryptographic work.
package jwt
