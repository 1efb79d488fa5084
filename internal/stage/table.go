// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/chai-stage/pkg/types"
)

// FindComplexTable locates the complex table: exactly one .csv file directly
// under the artifact root.
func FindComplexTable(artifactRoot string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(artifactRoot, "*.csv"))
	if err != nil {
		return "", fmt.Errorf("globbing %s: %w", artifactRoot, err)
	}
	if len(matches) != 1 {
		return "", &types.InputShapeError{
			Path:   artifactRoot,
			Reason: fmt.Sprintf("expected exactly one csv file, found %d", len(matches)),
		}
	}
	return matches[0], nil
}

// ReadComplexTable parses the two-column complex table at path. The header
// must be exactly "id,sequence"; each sequence cell is a colon-delimited
// chain list, chains receiving letters alphabetically by position.
func ReadComplexTable(path string) ([]types.Complex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening complex table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, &types.InputShapeError{Path: path, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &types.InputShapeError{Path: path, Reason: "empty table"}
	}
	if len(records[0]) != 2 || records[0][0] != "id" || records[0][1] != "sequence" {
		return nil, &types.InputShapeError{
			Path:   path,
			Reason: fmt.Sprintf("header must be exactly id,sequence, got %v", records[0]),
		}
	}

	seen := make(map[string]bool)
	complexes := make([]types.Complex, 0, len(records)-1)
	for i, rec := range records[1:] {
		id := strings.TrimSpace(rec[0])
		if id == "" {
			return nil, &types.InputShapeError{Path: path, Reason: fmt.Sprintf("row %d: empty id", i+2)}
		}
		if seen[id] {
			return nil, &types.InputShapeError{Path: path, Reason: fmt.Sprintf("row %d: duplicate id %q", i+2, id)}
		}
		seen[id] = true

		sequences := strings.Split(rec[1], ":")
		chains := make([]types.Chain, len(sequences))
		for k, seq := range sequences {
			if seq == "" {
				return nil, &types.InputShapeError{
					Path:   path,
					Reason: fmt.Sprintf("row %d (%s): empty chain sequence at position %d", i+2, id, k+1),
				}
			}
			chains[k] = types.Chain{ID: ChainLetter(k + 1), Sequence: seq}
		}
		complexes = append(complexes, types.Complex{ID: id, Chains: chains})
	}
	return complexes, nil
}

// ChainLetter returns the output letter for a 1-based chain position:
// A..Z, then AA, AB, and so on.
func ChainLetter(position int) string {
	if position < 1 {
		panic(fmt.Sprintf("chain position %d out of range", position))
	}
	var letters []byte
	for position > 0 {
		position--
		letters = append([]byte{byte('A' + position%26)}, letters...)
		position /= 26
	}
	return string(letters)
}
