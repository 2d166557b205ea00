package logger

import (
	"log/slog"
	"strings"
)

// Key patterns whose string values are masked before logging.
var sensitiveKeyPatterns = []string{
	"token",
	"sauce",
	"matrix",
	"secret",
	"password",
	"credential",
	"auth",
}

// redactedValue replaces values too short to mask meaningfully.
const redactedValue = "***REDACTED***"

// redactSensitive masks string attributes whose key suggests they carry
// a token or another secret. Nested groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if value := a.Value.String(); value != "" {
					return slog.String(a.Key, Mask(value))
				}
				break
			}
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			masked[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}
	return a
}

// Mask shortens a sensitive value to its first and last three
// characters. Handlers use it directly when a value must appear in a
// response or an audit line.
func Mask(value string) string {
	if len(value) < 10 {
		return redactedValue
	}
	return value[:3] + "..." + value[len(value)-3:]
}
