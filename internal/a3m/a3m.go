// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package a3m reads the a3m alignment containers produced by ColabFold.
// A container holds one alignment per query, separated by NUL bytes; each
// alignment is FASTA-shaped, its first record is the query itself (the
// identity row), and that record's header carries the query identifier the
// search tool assigned. Lines starting with '#' are ColabFold cardinality
// metadata and carry no alignment content.
package a3m

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/chai-stage/internal/fasta"
	"github.com/pdiddy/chai-stage/pkg/types"
)

// File is the parsed content of one ColabFold a3m container. Queries holds
// the query identifiers in order of appearance; Sets maps each identifier to
// its records, identity row first.
type File struct {
	Path    string
	Queries []string
	Sets    map[string][]types.Fasta
}

// ReadColabfold reads and parses the a3m container at path.
func ReadColabfold(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading a3m %s: %w", path, err)
	}

	f := &File{Path: path, Sets: make(map[string][]types.Fasta)}
	for _, block := range strings.Split(string(data), "\x00") {
		block = stripMetadata(block)
		if strings.TrimSpace(block) == "" {
			continue
		}
		records, err := fasta.ParseString(block)
		if err != nil {
			return nil, fmt.Errorf("parsing a3m %s: %w", path, err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("parsing a3m %s: block without records", path)
		}
		query := queryID(records[0].Header)
		if query == "" {
			return nil, fmt.Errorf("parsing a3m %s: identity row has no identifier", path)
		}
		if _, dup := f.Sets[query]; dup {
			return nil, fmt.Errorf("parsing a3m %s: duplicate query %q", path, query)
		}
		f.Queries = append(f.Queries, query)
		f.Sets[query] = records
	}
	if len(f.Queries) == 0 {
		return nil, fmt.Errorf("parsing a3m %s: no alignments found", path)
	}
	return f, nil
}

// Identity returns the identity row for query, or false if the query is not
// present in the file.
func (f *File) Identity(query string) (types.Fasta, bool) {
	records, ok := f.Sets[query]
	if !ok || len(records) == 0 {
		return types.Fasta{}, false
	}
	return records[0], true
}

// stripMetadata removes ColabFold '#' metadata lines from a block.
func stripMetadata(block string) string {
	lines := strings.Split(block, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// queryID extracts the query identifier from an identity-row header: the
// header up to the first whitespace or tab.
func queryID(header string) string {
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
