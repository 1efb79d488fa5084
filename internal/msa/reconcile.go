// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package msa reconciles the three alignment sets ColabFold produces per
// query — the paired cross-chain alignment, the uniref single-chain
// alignment, and the environmental (bfd/mgnify) single-chain alignment —
// into one provenance-annotated row table per chain.
package msa

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/chai-stage/internal/a3m"
	"github.com/pdiddy/chai-stage/pkg/types"
)

// CheckPaired verifies that every query in the paired container has the same
// number of rows. Pairing is positional across chains, so a ragged paired
// set means the upstream pairing step is broken, not just one query.
func CheckPaired(paired *a3m.File) error {
	lengths := make(map[int][]string)
	for _, q := range paired.Queries {
		n := len(paired.Sets[q])
		lengths[n] = append(lengths[n], q)
	}
	if len(lengths) <= 1 {
		return nil
	}
	parts := make([]string, 0, len(lengths))
	for n, qs := range lengths {
		parts = append(parts, fmt.Sprintf("%v have %d rows", qs, n))
	}
	sort.Strings(parts)
	return &types.ConsistencyError{
		Reason: "paired alignment is not rectangular: " + strings.Join(parts, ", "),
	}
}

// CheckQuerySets verifies that the paired, uniref, and env containers cover
// the same query identifiers. The error names the identifiers missing from
// each file so the offending upstream run can be found.
func CheckQuerySets(paired, uniref, env *a3m.File) error {
	universe := make(map[string]bool)
	for _, f := range []*a3m.File{paired, uniref, env} {
		for _, q := range f.Queries {
			universe[q] = true
		}
	}

	var problems []string
	for _, f := range []*a3m.File{paired, uniref, env} {
		var missing []string
		for q := range universe {
			if _, ok := f.Sets[q]; !ok {
				missing = append(missing, q)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			problems = append(problems, fmt.Sprintf("%s is missing %v", f.Path, missing))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &types.ConsistencyError{
		Reason: "query identifiers differ across alignment sources: " + strings.Join(problems, "; "),
	}
}

// Merge reconciles the three alignment sets for one query into an ordered
// row table: the paired rows first (identity row labeled as the query, later
// rows carrying their pairing index), then the uniref rows minus identity,
// then the env rows minus identity. Duplicate sequences across sections are
// preserved with the provenance they came from.
//
// The canonical query sequence is taken from the uniref identity row; all
// three identity rows must agree on it.
func Merge(query string, paired, uniref, env *a3m.File) (string, []types.AlignedRow, error) {
	pairedSet, ok := paired.Sets[query]
	if !ok {
		return "", nil, &types.ConsistencyError{Query: query, Reason: "query not present in paired alignment"}
	}
	unirefSet, ok := uniref.Sets[query]
	if !ok {
		return "", nil, &types.ConsistencyError{Query: query, Reason: "query not present in uniref alignment"}
	}
	envSet, ok := env.Sets[query]
	if !ok {
		return "", nil, &types.ConsistencyError{Query: query, Reason: "query not present in env alignment"}
	}

	querySeq := unirefSet[0].Sequence
	for _, set := range []struct {
		name    string
		records []types.Fasta
	}{
		{"paired", pairedSet},
		{"env", envSet},
	} {
		if set.records[0].Sequence != querySeq {
			return "", nil, &types.ConsistencyError{
				Query: query,
				Reason: fmt.Sprintf("identity row of %s alignment disagrees with uniref (%q vs %q)",
					set.name, set.records[0].Sequence, querySeq),
			}
		}
	}

	rows := make([]types.AlignedRow, 0, len(pairedSet)+len(unirefSet)+len(envSet)-2)
	for i, rec := range pairedSet {
		row := types.AlignedRow{
			Sequence:       rec.Sequence,
			SourceDatabase: string(types.SourceUniRef90),
			PairingKey:     strconv.Itoa(i),
			Comment:        "null",
		}
		if i == 0 {
			row.SourceDatabase = string(types.SourceQuery)
			row.PairingKey = ""
		}
		rows = append(rows, row)
	}
	for _, rec := range unirefSet[1:] {
		rows = append(rows, types.AlignedRow{
			Sequence:       rec.Sequence,
			SourceDatabase: string(types.SourceUniRef90),
			Comment:        "null",
		})
	}
	for _, rec := range envSet[1:] {
		rows = append(rows, types.AlignedRow{
			Sequence:       rec.Sequence,
			SourceDatabase: string(types.SourceBFDUniclust),
			Comment:        "null",
		})
	}
	return querySeq, rows, nil
}
