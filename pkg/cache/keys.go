package cache

import (
	"fmt"
	"strings"
)

// Resource kinds cached by gitstat.
const (
	KindProfile = "profile"
	KindStats   = "stats"
)

const (
	keyFormat  = "github-%s-%s" // <kind>-<subject>
	timeSuffix = "-time"
)

// Key returns the payload key for a resource, e.g. "github-stats-octocat".
func Key(kind, subject string) string {
	return fmt.Sprintf(keyFormat, kind, subject)
}

// TimeKey returns the key holding the write time of the payload stored under key.
func TimeKey(key string) string {
	return key + timeSuffix
}

// keyType extracts the kind from a key built by [Key], for metrics labels.
func keyType(key string) string {
	rest, ok := strings.CutPrefix(key, "github-")
	if !ok {
		return "other"
	}
	kind, _, ok := strings.Cut(rest, "-")
	if !ok || kind == "" {
		return "other"
	}
	return kind
}
