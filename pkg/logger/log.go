package logger

import (
	"net/http"
	"strings"
)

// redactedHeaders are never logged verbatim.
var redactedHeaders = map[string]struct{}{
	"Authorization": {},
	"X-Api-Key":     {},
	"Cookie":        {},
}

// SafeHeaders renders request headers with credentials masked.
func SafeHeaders(r *http.Request) string {
	var b strings.Builder
	for name, vals := range r.Header {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString("=")
		if _, redact := redactedHeaders[http.CanonicalHeaderKey(name)]; redact {
			b.WriteString("[redacted]")
			continue
		}
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// LogRequest logs a concise, safe summary of an incoming request.
func LogRequest(r *http.Request) {
	ensure().Info("incoming_request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
		"headers", SafeHeaders(r),
	)
}
