package tracker

import (
	"fmt"
	"strings"
)

// resolveRef picks the single id equal to ref or starting with it.
// An exact match wins over prefix matches.
func resolveRef(ref string, ids []string, notFound error) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", fmt.Errorf("empty reference: %w", ErrInvalidInput)
	}

	var matches []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == ref {
			return id, nil
		}
		if strings.HasPrefix(lower, ref) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%q: %w", ref, notFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d records: %w", ref, len(matches), ErrAmbiguousRef)
	}
}
