// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fasta parses and writes FASTA-formatted sequence records. Parsing
// is kept simple and conservative: header lines start with '>', sequence
// lines are concatenated verbatim.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/chai-stage/pkg/types"
)

// Parse reads FASTA records from r in file order. Records with an empty
// header line (a bare ">") keep the empty header; blank lines are ignored.
func Parse(r io.Reader) ([]types.Fasta, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []types.Fasta
	var current *types.Fasta
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ">") {
			if current != nil {
				records = append(records, *current)
			}
			current = &types.Fasta{Header: line[1:]}
			continue
		}
		if current == nil || line == "" {
			continue
		}
		current.Sequence += line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning fasta: %w", err)
	}
	if current != nil {
		records = append(records, *current)
	}
	return records, nil
}

// ParseString parses FASTA records from an in-memory string.
func ParseString(s string) ([]types.Fasta, error) {
	return Parse(strings.NewReader(s))
}

// Write writes records to w, one header line and one sequence line each.
func Write(w io.Writer, records []types.Fasta) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", rec.Header, rec.Sequence); err != nil {
			return fmt.Errorf("writing fasta record %q: %w", rec.Header, err)
		}
	}
	return nil
}

// WriteFile writes records to path, creating or truncating it.
func WriteFile(path string, records []types.Fasta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
