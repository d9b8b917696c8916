package util

import (
	"strings"

	"github.com/sifan077/BioLink/internal/app/model"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// SourceAddress picks the advisory client address for analytics:
// first X-Forwarded-For entry, then X-Real-IP, then "unknown". It is not validated.
func SourceAddress(forwardedFor, realIP string) string {
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if realIP != "" {
		return realIP
	}
	return model.UnknownSource
}
