package repair

import "strings"

// Keyword markers for the gender inference heuristic. Matching is
// token-based and case-insensitive; female markers are checked first.
var (
	femaleMarkers = map[string]bool{"woman": true, "female": true, "she": true}
	maleMarkers   = map[string]bool{"man": true, "male": true, "he": true}
)

// InferGender scans free-text character description for gender markers.
// It is a best-effort heuristic, not a classifier: when no marker matches
// it returns the neutral "unknown".
func InferGender(description string) string {
	tokens := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})

	for _, tok := range tokens {
		if femaleMarkers[tok] {
			return "female"
		}
	}
	for _, tok := range tokens {
		if maleMarkers[tok] {
			return "male"
		}
	}
	return "unknown"
}
