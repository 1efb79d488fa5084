// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceDatabase labels the provenance of one aligned row. The string
// values are the ones the downstream model's parquet reader expects.
type SourceDatabase string

const (
	SourceQuery       SourceDatabase = "query"
	SourceUniRef90    SourceDatabase = "uniref90"
	SourceBFDUniclust SourceDatabase = "bfd_uniclust"
)

// AlignedRow is one row of a reconciled alignment table. Rows serialize to
// the .aligned.pqt parquet schema consumed by the folding model: four string
// columns, no nulls.
type AlignedRow struct {
	// Sequence is the aligned sequence in a3m notation (insertions lowercase).
	Sequence string `parquet:"sequence"`

	// SourceDatabase is the provenance label for the row.
	SourceDatabase string `parquet:"source_database"`

	// PairingKey is the paired-alignment row index as a decimal string for
	// rows that came from the paired set, and empty for all others.
	PairingKey string `parquet:"pairing_key"`

	// Comment is unused by the downstream reader; always the literal "null".
	Comment string `parquet:"comment"`
}
