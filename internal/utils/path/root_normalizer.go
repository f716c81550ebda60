package pathutils

import (
	"path/filepath"
	"strings"
)

// RootNormalizer turns raw root arguments into the list handed to repository discovery.
type RootNormalizer struct {
	homeExpander *HomeExpander
}

// NewRootNormalizer constructs a RootNormalizer; a nil expander falls back to the OS home lookup.
func NewRootNormalizer(homeExpander *HomeExpander) *RootNormalizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootNormalizer{homeExpander: homeExpander}
}

// Normalize trims whitespace, expands a leading tilde, cleans each path, and drops blanks
// and exact repeats while preserving the order of first appearance.
func (normalizer *RootNormalizer) Normalize(candidatePaths []string) []string {
	expander := NewHomeExpander()
	if normalizer != nil {
		expander = normalizer.homeExpander
	}

	normalized := make([]string, 0, len(candidatePaths))
	seen := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		trimmedCandidate := strings.TrimSpace(candidatePath)
		if len(trimmedCandidate) == 0 {
			continue
		}

		cleanedPath := filepath.Clean(expander.Expand(trimmedCandidate))
		if _, duplicate := seen[cleanedPath]; duplicate {
			continue
		}
		seen[cleanedPath] = struct{}{}
		normalized = append(normalized, cleanedPath)
	}

	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
