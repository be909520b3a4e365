// Package prometheus renders arenaxauth analytics in Prometheus text
// exposition format.
//
// [NewExporter] accepts an arenaxauth.Service and exposes an http.Handler
// that renders the issuance and validation counters plus the reconciled
// session gauges. Counter names are prefixed arenax_auth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Trigger store reconciliation; callers schedule RefreshAnalytics.
package prometheus
