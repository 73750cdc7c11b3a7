package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"video-ingest/internal/logging"
)

// AccessLogOptions selects which requests reach the access log. API calls
// are always logged.
type AccessLogOptions struct {
	Downloads    bool // GET /uploads/{id}/{file}
	HealthChecks bool
}

var healthPaths = map[string]bool{
	"/api/health": true,
	"/healthz":    true,
	"/livez":      true,
	"/readyz":     true,
}

func (o AccessLogOptions) skip(path string) bool {
	if healthPaths[path] {
		return !o.HealthChecks
	}
	if strings.HasPrefix(path, "/uploads/") {
		return !o.Downloads
	}
	return false
}

// AccessLog writes one entry per request to log under component=access.
func AccessLog(opts AccessLogOptions, log *logging.Logger) func(http.Handler) http.Handler {
	log = log.With("component", "access")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			entry := log.
				With("client", clean(clientIP(r))).
				With("method", clean(r.Method)).
				With("path", clean(r.URL.Path)).
				With("status", strconv.Itoa(rec.status)).
				With("bytes", strconv.FormatInt(rec.bytes, 10)).
				With("duration", time.Since(start).Round(time.Millisecond).String())
			if ua := r.UserAgent(); ua != "" {
				entry = entry.With("user_agent", clean(ua))
			}
			switch {
			case rec.status >= 500:
				entry.Warn("%s %s failed", clean(r.Method), clean(r.URL.Path))
			default:
				entry.Info("%s %s", clean(r.Method), clean(r.URL.Path))
			}
		})
	}
}

// clean drops control characters so client input cannot forge log lines
// in console output.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
