// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template parses, remaps, and writes m8 template-hit tables. The
// m8 format is the BLAST tabular convention: twelve tab-separated columns
// (query_id, subject_id, pident, aln_len, mismatches, gap_openings, qstart,
// qend, tstart, tend, e_value, bit_score), no header. Only the query_id
// column is interpreted; everything else passes through byte-identical.
package template

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/chai-stage/pkg/types"
)

// m8Columns is the fixed column count of the hit table.
const m8Columns = 12

// Hit is one template-hit row. QueryID is the first column; Rest holds the
// remaining columns verbatim.
type Hit struct {
	QueryID string
	Rest    []string
}

// ParseM8 reads the hit table at path. An empty file yields an empty slice.
func ParseM8(path string) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening m8 %s: %w", path, err)
	}
	defer f.Close()

	hits, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing m8 %s: %w", path, err)
	}
	return hits, nil
}

// Parse reads hit rows from r. Fields are split on tabs directly, never
// quoted or re-escaped, so writing a parsed row back reproduces it exactly.
func Parse(r io.Reader) ([]Hit, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var hits []Hit
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != m8Columns {
			return nil, fmt.Errorf("line %d: %d columns, want %d", lineNo, len(fields), m8Columns)
		}
		hits = append(hits, Hit{QueryID: fields[0], Rest: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning m8: %w", err)
	}
	return hits, nil
}

// Remap returns a new hit table with each row's QueryID translated through
// mapping. A query identifier absent from the mapping means the template
// search saw a query the reconciliation never produced; that row must not
// be dropped silently, so Remap fails instead.
func Remap(hits []Hit, mapping map[string]string) ([]Hit, error) {
	remapped := make([]Hit, len(hits))
	for i, hit := range hits {
		chainID, ok := mapping[hit.QueryID]
		if !ok {
			return nil, &types.MappingError{
				Key:    hit.QueryID,
				Reason: "template hit references a query with no chain mapping",
			}
		}
		remapped[i] = Hit{QueryID: chainID, Rest: hit.Rest}
	}
	return remapped, nil
}

// Write writes hits to w headerless and tab-delimited, one row per line, so
// tables from several complexes concatenate cleanly.
func Write(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	for _, hit := range hits {
		if _, err := bw.WriteString(hit.QueryID + "\t" + strings.Join(hit.Rest, "\t") + "\n"); err != nil {
			return fmt.Errorf("writing m8 row: %w", err)
		}
	}
	return bw.Flush()
}

// WriteM8 writes hits to path, creating or truncating it.
func WriteM8(path string, hits []Hit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, hits); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
