package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const cachePrefix = "cache:"

// TaskKey is the authoritative output key for one task of a job.
func TaskKey(jobID, kind string) string {
	return fmt.Sprintf("job:%s:task:%s", jobID, kind)
}

// SharedKey is the agent-to-agent scratch key for a job. Scratch entries
// are advisory caches, not authoritative outputs; prefer dependency edges.
func SharedKey(jobID, name string) string {
	return fmt.Sprintf("job:%s:shared:%s", jobID, name)
}

// QueryHash returns the canonical cache key hash for a connector query:
// sha256 over "query|filters|source" with filters sorted by name.
func QueryHash(query string, filters map[string]string, source string) string {
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	h := sha256.Sum256([]byte(query + "|" + strings.Join(parts, ",") + "|" + source))
	return hex.EncodeToString(h[:])
}
