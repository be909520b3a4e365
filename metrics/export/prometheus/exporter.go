package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	arenaxauth "github.com/arenax-gg/arenax-auth"
)

type analyticsSource interface {
	AnalyticsSnapshot() arenaxauth.AnalyticsSnapshot
}

// Exporter renders arenaxauth analytics in Prometheus text exposition
// format.
type Exporter struct {
	source analyticsSource
}

// NewExporter creates an exporter that reads from the given service.
func NewExporter(service *arenaxauth.Service) *Exporter {
	if service == nil {
		return &Exporter{}
	}
	return &Exporter{source: service}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source analyticsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the rendered metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render writes the current analytics in Prometheus text exposition format.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snap := e.source.AnalyticsSnapshot()

	var b strings.Builder
	b.Grow(2048)

	writeMetric(&b, "arenax_auth_tokens_issued_total", "counter",
		"Tokens minted, access and refresh counted separately.", snap.TokensIssued)
	writeMetric(&b, "arenax_auth_refresh_attempts_total", "counter",
		"Refresh exchanges attempted, successful or not.", snap.RefreshAttempts)
	writeMetric(&b, "arenax_auth_failed_validations_total", "counter",
		"Access-token validations rejected.", snap.FailedValidations)
	writeMetric(&b, "arenax_auth_active_sessions", "gauge",
		"Live session records as of the last reconciliation.", snap.ActiveSessions)
	writeMetric(&b, "arenax_auth_blacklisted_tokens", "gauge",
		"Live revocation records as of the last reconciliation.", snap.BlacklistedTokens)
	writeMetric(&b, "arenax_auth_analytics_last_updated_seconds", "gauge",
		"Unix time of the last counter update or reconciliation.", uint64(snap.LastUpdated.Unix()))

	return b.String()
}

func writeMetric(b *strings.Builder, name, kind, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
