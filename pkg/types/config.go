// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StageConfig holds settings for one staging run.
type StageConfig struct {
	// ArtifactRoot is the ColabFold output directory containing the
	// per-identifier alignment subtrees and the complex table.
	ArtifactRoot string `json:"artifact_root" yaml:"artifact_root"`

	// OutputRoot is the directory staged complexes are written under,
	// one subdirectory per identifier.
	OutputRoot string `json:"output_root" yaml:"output_root"`

	// ComplexTable optionally overrides csv discovery under ArtifactRoot.
	ComplexTable string `json:"complex_table,omitempty" yaml:"complex_table,omitempty"`

	// NoManifest disables recording outcomes in the staging manifest.
	NoManifest bool `json:"no_manifest,omitempty" yaml:"no_manifest,omitempty"`
}

// ManifestConfig holds settings for reading the staging manifest.
type ManifestConfig struct {
	// OutputRoot is the staging output directory the manifest lives under.
	OutputRoot string `json:"output_root" yaml:"output_root"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Stage    StageConfig    `json:"stage" yaml:"stage"`
	Manifest ManifestConfig `json:"manifest" yaml:"manifest"`
}
