// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/pdiddy/chai-stage/internal/fasta"
	"github.com/pdiddy/chai-stage/internal/msa"
	"github.com/pdiddy/chai-stage/pkg/types"
)

// m8Row builds a 12-column template hit line for queryID.
func m8Row(queryID string) string {
	return queryID + "\t6S61_A\t98.5\t120\t2\t0\t1\t120\t5\t124\t1.2e-50\t250.1"
}

func writeArtifact(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeArtifacts lays out a valid two-chain ColabFold subtree for id. The
// paired file is rectangular (3 rows per query); uniref and env carry one
// extra hit each for query 101.
func writeArtifacts(t *testing.T, root, id string) {
	t.Helper()
	writeArtifact(t, root, id+"_pairgreedy/pair.a3m",
		">101\nAAAA\n>p1\naAAA\n>p2\n-AAA\n"+
			"\x00"+
			">102\nCCCC\n>p1\ncCCC\n>p2\n-CCC\n")
	writeArtifact(t, root, id+"_env/uniref.a3m",
		">101\nAAAA\n>u1\nAAA-\n"+
			"\x00"+
			">102\nCCCC\n>u1\nCCC-\n")
	writeArtifact(t, root, id+"_env/bfd.mgnify30.metaeuk30.smag30.a3m",
		">101\nAAAA\n>e1\nAA--\n"+
			"\x00"+
			">102\nCCCC\n")
	writeArtifact(t, root, id+"_env/pdb70.m8", m8Row("101")+"\n"+m8Row("102")+"\n")
}

func testComplex(id string) types.Complex {
	return types.Complex{ID: id, Chains: []types.Chain{
		{ID: "A", Sequence: "AAAA"},
		{ID: "B", Sequence: "CCCC"},
	}}
}

func TestStageComplex(t *testing.T) {
	artifactRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeArtifacts(t, artifactRoot, "4nnp")

	cfg := types.StageConfig{ArtifactRoot: artifactRoot, OutputRoot: outputRoot}
	var log bytes.Buffer

	result, err := StageComplex(cfg, testComplex("4nnp"), &log)
	if err != nil {
		t.Fatalf("StageComplex: %v", err)
	}

	outDir := filepath.Join(outputRoot, "4nnp")
	if result.OutputDir != outDir {
		t.Errorf("OutputDir = %q, want %q", result.OutputDir, outDir)
	}

	// chai.fasta round trip: written sequences equal the declared set.
	records, err := fasta.Parse(mustOpen(t, filepath.Join(outDir, "chai.fasta")))
	if err != nil {
		t.Fatal(err)
	}
	var headers, sequences []string
	for _, r := range records {
		headers = append(headers, r.Header)
		sequences = append(sequences, r.Sequence)
	}
	sort.Strings(sequences)
	if !slices.Equal(headers, []string{"protein|A", "protein|B"}) {
		t.Errorf("headers = %v", headers)
	}
	if !slices.Equal(sequences, []string{"AAAA", "CCCC"}) {
		t.Errorf("sequences = %v", sequences)
	}

	// One content-addressed alignment table per chain.
	for seq, wantRows := range map[string]int{"AAAA": 5, "CCCC": 4} {
		path := filepath.Join(outDir, "msas", msa.ExpectedBasename(seq))
		rows, err := msa.ReadAligned(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if len(rows) != wantRows {
			t.Errorf("%s: %d rows, want %d", seq, len(rows), wantRows)
		}
		if rows[0].SourceDatabase != "query" || rows[0].Sequence != seq {
			t.Errorf("%s: bad query row %+v", seq, rows[0])
		}
	}

	// Template hits remapped onto chain letters, everything else intact.
	data, err := os.ReadFile(filepath.Join(outDir, "all_template_hits.m8"))
	if err != nil {
		t.Fatal(err)
	}
	want := m8Row("A") + "\n" + m8Row("B") + "\n"
	if string(data) != want {
		t.Errorf("template table = %q, want %q", data, want)
	}

	if result.TemplateHits != 2 || len(result.Chains) != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestStageComplexRaggedPairedWritesNothing(t *testing.T) {
	artifactRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeArtifacts(t, artifactRoot, "4nnp")
	// Break rectangularity: drop one paired row from query 102.
	writeArtifact(t, artifactRoot, "4nnp_pairgreedy/pair.a3m",
		">101\nAAAA\n>p1\naAAA\n>p2\n-AAA\n"+
			"\x00"+
			">102\nCCCC\n>p1\ncCCC\n")

	cfg := types.StageConfig{ArtifactRoot: artifactRoot, OutputRoot: outputRoot}
	var log bytes.Buffer

	_, err := StageComplex(cfg, testComplex("4nnp"), &log)
	var cerr *types.ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ConsistencyError", err)
	}
	if cerr.Identifier != "4nnp" {
		t.Errorf("Identifier = %q, want 4nnp", cerr.Identifier)
	}

	// No partial output may exist for the identifier.
	if _, err := os.Stat(filepath.Join(outputRoot, "4nnp")); !os.IsNotExist(err) {
		t.Error("output directory exists after failed staging")
	}
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output root not empty after failure: %v", entries)
	}
}

func TestStageComplexTemplateHitForUnknownQuery(t *testing.T) {
	artifactRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeArtifacts(t, artifactRoot, "4nnp")
	writeArtifact(t, artifactRoot, "4nnp_env/pdb70.m8", m8Row("999")+"\n")

	cfg := types.StageConfig{ArtifactRoot: artifactRoot, OutputRoot: outputRoot}
	var log bytes.Buffer

	_, err := StageComplex(cfg, testComplex("4nnp"), &log)
	var merr *types.MappingError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MappingError", err)
	}
	if _, statErr := os.Stat(filepath.Join(outputRoot, "4nnp")); !os.IsNotExist(statErr) {
		t.Error("output directory exists after failed staging")
	}
}

func TestStageComplexUndeclaredSequence(t *testing.T) {
	artifactRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeArtifacts(t, artifactRoot, "4nnp")

	// Declared chains do not cover the second upstream sequence.
	cx := types.Complex{ID: "4nnp", Chains: []types.Chain{
		{ID: "A", Sequence: "AAAA"},
		{ID: "B", Sequence: "GGGG"},
	}}
	cfg := types.StageConfig{ArtifactRoot: artifactRoot, OutputRoot: outputRoot}
	var log bytes.Buffer

	_, err := StageComplex(cfg, cx, &log)
	var merr *types.MappingError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MappingError", err)
	}
}

func TestStageAllIsolatesFailures(t *testing.T) {
	artifactRoot := t.TempDir()
	outputRoot := t.TempDir()
	writeArtifacts(t, artifactRoot, "good")
	// "bad" has no artifacts at all.

	cfg := types.StageConfig{ArtifactRoot: artifactRoot, OutputRoot: outputRoot}
	var log bytes.Buffer

	batch := StageAll(cfg, []types.Complex{
		testComplex("bad"),
		testComplex("good"),
	}, &log)

	if batch.Staged != 1 || batch.Failed != 1 || batch.Total() != 2 {
		t.Errorf("batch = %+v", batch)
	}
	if !batch.HasFailures() {
		t.Error("HasFailures() = false")
	}
	if len(batch.Failures) != 1 || batch.Failures[0].ID != "bad" {
		t.Errorf("Failures = %+v", batch.Failures)
	}
	if _, err := os.Stat(filepath.Join(outputRoot, "good", "chai.fasta")); err != nil {
		t.Errorf("good complex not staged: %v", err)
	}
	if !strings.Contains(log.String(), "Batch summary: 1 staged, 1 failed (total: 2)") {
		t.Errorf("log = %q", log.String())
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
