// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared record types, configuration structs, and
// error taxonomy for the staging pipeline.
package types

// Fasta is a single FASTA record: a header line (without the leading '>')
// and the concatenated sequence.
type Fasta struct {
	Header   string `json:"header" yaml:"header"`
	Sequence string `json:"sequence" yaml:"sequence"`
}

// Chain is one polymer chain of a complex as declared in the input table.
type Chain struct {
	// ID is the output chain letter ("A", "B", ...), assigned by position
	// in the declared chain list.
	ID string `json:"id" yaml:"id"`

	// Sequence is the chain's amino-acid sequence, verbatim from the table.
	Sequence string `json:"sequence" yaml:"sequence"`
}

// Complex is one entry of the input table: an identifier plus its declared
// chains in table order.
type Complex struct {
	ID     string  `json:"id" yaml:"id"`
	Chains []Chain `json:"chains" yaml:"chains"`
}

// FastaHeader returns the staging header for a chain ("protein|A").
func (c Chain) FastaHeader() string {
	return "protein|" + c.ID
}

// Fastas returns the chai.fasta records for the complex, in chain order.
func (c Complex) Fastas() []Fasta {
	records := make([]Fasta, len(c.Chains))
	for i, chain := range c.Chains {
		records[i] = Fasta{Header: chain.FastaHeader(), Sequence: chain.Sequence}
	}
	return records
}
