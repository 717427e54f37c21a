// Package repair normalizes incomplete structured output from a generative
// step into a shape that satisfies the script schema's required-field
// contract. Missing fields are an expected, bounded category of generator
// imperfection and are filled locally; they are never surfaced as errors.
package repair

import "fmt"

// MalformedStructureError indicates the raw structured response is not a
// well-formed mapping/list tree at all. This is a different failure class
// from a missing field: it propagates instead of being repaired.
type MalformedStructureError struct {
	Path     string
	Expected string
}

func (e *MalformedStructureError) Error() string {
	return fmt.Sprintf("malformed structure at %s: expected %s", e.Path, e.Expected)
}
