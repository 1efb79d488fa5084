// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xref builds the cross-reference from the search tool's internal
// query identifiers to the output chain letters. The two naming schemes are
// independent, so the only join key is the literal sequence content.
package xref

import (
	"sort"
	"strings"

	"github.com/pdiddy/chai-stage/pkg/types"
)

// QuerySequence pairs an upstream query identifier with the canonical
// sequence recovered for it during reconciliation.
type QuerySequence struct {
	ID       string
	Sequence string
}

// BuildChainMap maps each upstream query identifier to a declared chain
// letter by exact sequence equality. Assignment is deterministic for
// homo-multimers: queries are processed in file order and each matching
// chain is consumed in declared order, a letter being handed out at most
// once; if every matching chain is already consumed the first match is
// reused.
//
// The set of query sequences must equal the set of declared chain sequences,
// otherwise the upstream output does not correspond to the declared complex.
func BuildChainMap(queries []QuerySequence, chains []types.Chain) (map[string]string, error) {
	if err := checkSequenceSets(queries, chains); err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(queries))
	consumed := make([]bool, len(chains))
	for _, q := range queries {
		first := -1
		assigned := -1
		for i, chain := range chains {
			if chain.Sequence != q.Sequence {
				continue
			}
			if first < 0 {
				first = i
			}
			if !consumed[i] {
				assigned = i
				break
			}
		}
		if first < 0 {
			return nil, &types.MappingError{
				Key:    q.ID,
				Reason: "sequence does not match any declared chain",
			}
		}
		if assigned < 0 {
			assigned = first
		}
		consumed[assigned] = true
		mapping[q.ID] = chains[assigned].ID
	}
	return mapping, nil
}

// checkSequenceSets verifies that the sequences recovered upstream and the
// sequences declared for the complex are the same set.
func checkSequenceSets(queries []QuerySequence, chains []types.Chain) error {
	recovered := make(map[string]bool, len(queries))
	for _, q := range queries {
		recovered[q.Sequence] = true
	}
	declared := make(map[string]bool, len(chains))
	for _, c := range chains {
		declared[c.Sequence] = true
	}

	var missing, extra []string
	for s := range declared {
		if !recovered[s] {
			missing = append(missing, s)
		}
	}
	for s := range recovered {
		if !declared[s] {
			extra = append(extra, s)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "declared chains without an upstream alignment: "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "upstream alignments without a declared chain: "+strings.Join(extra, ", "))
	}
	return &types.MappingError{Reason: strings.Join(parts, "; ")}
}
