// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package msa

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/pdiddy/chai-stage/pkg/types"
)

// Hash scheme v1: the basename is the hex sha256 of the UTF-8 chain
// sequence. The downstream model locates a chain's alignment table by this
// name, so the scheme must stay byte-stable across releases.
const alignedSuffix = ".aligned.pqt"

// SequenceHash returns the hex digest a chain's alignment table is
// addressed by.
func SequenceHash(querySequence string) string {
	sum := sha256.Sum256([]byte(querySequence))
	return hex.EncodeToString(sum[:])
}

// ExpectedBasename returns the content-addressed filename for a chain's
// alignment table.
func ExpectedBasename(querySequence string) string {
	return SequenceHash(querySequence) + alignedSuffix
}

// ValidateRows checks the reconciled table against the output schema before
// serialization: the table is non-empty, row 0 is the single query row, the
// pairing key is a decimal index exactly on paired-provenance rows, and no
// sequence or comment is empty.
func ValidateRows(rows []types.AlignedRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("aligned table is empty")
	}
	queryRows := 0
	for i, row := range rows {
		switch types.SourceDatabase(row.SourceDatabase) {
		case types.SourceQuery:
			queryRows++
			if i != 0 {
				return fmt.Errorf("row %d: query row must be first", i)
			}
			if row.PairingKey != "" {
				return fmt.Errorf("row %d: query row must not carry a pairing key", i)
			}
		case types.SourceUniRef90, types.SourceBFDUniclust:
			if row.PairingKey != "" {
				if _, err := strconv.Atoi(row.PairingKey); err != nil {
					return fmt.Errorf("row %d: pairing key %q is not numeric", i, row.PairingKey)
				}
			}
		default:
			return fmt.Errorf("row %d: unknown source database %q", i, row.SourceDatabase)
		}
		if row.Sequence == "" {
			return fmt.Errorf("row %d: empty sequence", i)
		}
		if row.Comment == "" {
			return fmt.Errorf("row %d: empty comment", i)
		}
	}
	if queryRows != 1 {
		return fmt.Errorf("aligned table has %d query rows, want exactly 1", queryRows)
	}
	return nil
}

// WriteAligned validates rows and writes them as a parquet table at path.
func WriteAligned(path string, rows []types.AlignedRow) error {
	if err := ValidateRows(rows); err != nil {
		return fmt.Errorf("validating aligned table %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	writer := parquet.NewGenericWriter[types.AlignedRow](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing parquet %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing parquet %s: %w", path, err)
	}
	return f.Close()
}

// ReadAligned reads an alignment table written by WriteAligned. It exists
// for the manifest and for tests; the staging path itself never reads back.
func ReadAligned(path string) ([]types.AlignedRow, error) {
	rows, err := parquet.ReadFile[types.AlignedRow](path)
	if err != nil {
		return nil, fmt.Errorf("reading parquet %s: %w", path, err)
	}
	return rows, nil
}
