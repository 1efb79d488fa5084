// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package msa

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chai-stage/pkg/types"
)

func TestExpectedBasename(t *testing.T) {
	// The downstream model resolves tables by this name; the digest must
	// never change across releases.
	got := ExpectedBasename("MKTAYIAKQR")
	want := "0b2b6b8411d220f8648b67b5f839a4336470f4fc93d9604009a1cb3a093ae29e.aligned.pqt"
	assert.Equal(t, want, got)

	assert.Equal(t, ExpectedBasename("AAA"), ExpectedBasename("AAA"))
	assert.NotEqual(t, ExpectedBasename("AAA"), ExpectedBasename("BBB"))
}

func validTable() []types.AlignedRow {
	return []types.AlignedRow{
		{Sequence: "AAA", SourceDatabase: "query", PairingKey: "", Comment: "null"},
		{Sequence: "aAA", SourceDatabase: "uniref90", PairingKey: "1", Comment: "null"},
		{Sequence: "AA-", SourceDatabase: "uniref90", PairingKey: "", Comment: "null"},
		{Sequence: "aa-", SourceDatabase: "bfd_uniclust", PairingKey: "", Comment: "null"},
	}
}

func TestValidateRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rows []types.AlignedRow) []types.AlignedRow
		errMsg string
	}{
		{
			name:   "valid table",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow { return rows },
		},
		{
			name:   "empty table",
			mutate: func([]types.AlignedRow) []types.AlignedRow { return nil },
			errMsg: "empty",
		},
		{
			name: "missing query row",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[0].SourceDatabase = "uniref90"
				return rows
			},
			errMsg: "query rows",
		},
		{
			name: "query row not first",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[0], rows[2] = rows[2], rows[0]
				return rows
			},
			errMsg: "must be first",
		},
		{
			name: "query row with pairing key",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[0].PairingKey = "1"
				return rows
			},
			errMsg: "pairing key",
		},
		{
			name: "non-numeric pairing key",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[1].PairingKey = "x"
				return rows
			},
			errMsg: "not numeric",
		},
		{
			name: "unknown source database",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[3].SourceDatabase = "pdb70"
				return rows
			},
			errMsg: "unknown source",
		},
		{
			name: "empty sequence",
			mutate: func(rows []types.AlignedRow) []types.AlignedRow {
				rows[2].Sequence = ""
				return rows
			},
			errMsg: "empty sequence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRows(tt.mutate(validTable()))
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteAlignedRoundTrip(t *testing.T) {
	rows := validTable()
	path := filepath.Join(t.TempDir(), ExpectedBasename("AAA"))

	require.NoError(t, WriteAligned(path, rows))

	got, err := ReadAligned(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteAlignedRejectsInvalid(t *testing.T) {
	rows := validTable()
	rows[0].SourceDatabase = "uniref90"
	path := filepath.Join(t.TempDir(), "bad.aligned.pqt")

	err := WriteAligned(path, rows)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
