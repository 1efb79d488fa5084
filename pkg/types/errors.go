// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ConsistencyError reports a structural mismatch between the alignment
// sources for one identifier: non-rectangular paired alignments, diverging
// query-identifier sets, or disagreeing identity rows. It is never
// recoverable; the identifier's pipeline must abort without writing output.
type ConsistencyError struct {
	// Identifier is the complex being processed, if known.
	Identifier string

	// Query is the upstream query identifier the mismatch was detected on,
	// empty for table-wide checks.
	Query string

	// Reason describes the violated invariant.
	Reason string
}

func (e *ConsistencyError) Error() string {
	switch {
	case e.Identifier != "" && e.Query != "":
		return fmt.Sprintf("consistency error for %s (query %s): %s", e.Identifier, e.Query, e.Reason)
	case e.Identifier != "":
		return fmt.Sprintf("consistency error for %s: %s", e.Identifier, e.Reason)
	case e.Query != "":
		return fmt.Sprintf("consistency error for query %s: %s", e.Query, e.Reason)
	default:
		return "consistency error: " + e.Reason
	}
}

// MappingError reports that a sequence or query identifier cannot be
// attributed to a declared chain of the complex. Silently dropping the
// offending row would corrupt the staged output, so this always propagates.
type MappingError struct {
	// Key is the upstream query identifier or sequence that failed to map.
	Key string

	Reason string
}

func (e *MappingError) Error() string {
	if e.Key == "" {
		return "mapping error: " + e.Reason
	}
	return fmt.Sprintf("mapping error for %q: %s", e.Key, e.Reason)
}

// InputShapeError reports a malformed complex table or artifact layout.
// It aborts the whole run before any identifier is processed.
type InputShapeError struct {
	Path   string
	Reason string
}

func (e *InputShapeError) Error() string {
	if e.Path == "" {
		return "input shape error: " + e.Reason
	}
	return fmt.Sprintf("input shape error in %s: %s", e.Path, e.Reason)
}
