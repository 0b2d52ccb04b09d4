package consumer

import "strings"

// isRateLimit spots platform rate-limit responses in post failures so the
// log line says what actually happened.
func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}
