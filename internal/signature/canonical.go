package signature

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Payload is the canonical intent record signed to authorize an action.
// It is constructed once per stage invocation and discarded after
// signing; only the signatures cross the stage boundary.
type Payload map[string]any

// Canonicalize returns a canonical JSON representation of a payload
// with stable key ordering, so the same logical payload always yields
// the same bytes and a remote verifier can reconstruct them
// independently.
func Canonicalize(payload Payload) ([]byte, error) {
	return json.Marshal(sortKeys(map[string]any(payload)))
}

// Digest computes the blake3 hash of a canonicalized payload. The
// digest identifies an intent (taskId+roundNumber+action) in logs and
// state snapshots without carrying the payload itself around.
func Digest(payload Payload) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash payload: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// sortKeys recursively sorts map keys for stable JSON output
func sortKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := make(map[string]any, len(val))
		for _, k := range keys {
			sorted[k] = sortKeys(val[k])
		}
		return sorted

	case []any:
		for i, item := range val {
			val[i] = sortKeys(item)
		}
		return val

	default:
		return v
	}
}
