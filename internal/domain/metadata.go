package domain

import "time"

// ManifestFile describes one file extracted by the fetch collaborator.
type ManifestFile struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest is the provenance record written next to a raw snapshot. The
// normalize stage only reads SchemaHashes, and only advisorily.
type Manifest struct {
	SnapshotDate     string                  `json:"snapshot_date"`
	CreatedAt        string                  `json:"created_at"`
	PreviousSnapshot *string                 `json:"previous_snapshot"`
	Files            map[string]ManifestFile `json:"files"`
	SchemaHashes     map[string]string       `json:"schema_hashes"`
}

// NormalizeMetadata is written to _meta/normalize.json by the normalize stage.
type NormalizeMetadata struct {
	SnapshotDate string         `json:"snapshot_date"`
	NormalizedAt time.Time      `json:"normalized_at"`
	RowCounts    map[string]int `json:"row_counts"`
	Degraded     map[string]int `json:"degraded,omitempty"`
}

// StoreInfo describes one store written by the publish stage.
type StoreInfo struct {
	Target    string `json:"target"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// PublishMetadata is written to _meta/publish.json by the publish stage.
type PublishMetadata struct {
	SnapshotDate string               `json:"snapshot_date"`
	PublishedAt  time.Time            `json:"published_at"`
	Stores       map[string]StoreInfo `json:"stores"`
}

// ConsolidatedMetadata merges normalize metadata with raw provenance and is
// written to _meta/metadata.json.
type ConsolidatedMetadata struct {
	SnapshotDate string               `json:"snapshot_date"`
	FetchedAt    string               `json:"fetched_at"`
	NormalizedAt time.Time            `json:"normalized_at"`
	PublishedAt  time.Time            `json:"published_at"`
	RowCounts    map[string]int       `json:"row_counts"`
	SourceURLs   []string             `json:"source_urls"`
	FileHashes   map[string]string    `json:"file_hashes"`
	Stores       map[string]StoreInfo `json:"stores"`
}

// SnapshotPublished announces a completed publish to downstream consumers.
type SnapshotPublished struct {
	SnapshotDate string         `json:"snapshot_date"`
	PublishedAt  time.Time      `json:"published_at"`
	RowCounts    map[string]int `json:"row_counts"`
	Stores       []string       `json:"stores"`
}

// RunStatus summarizes pipeline progress for the status endpoint.
type RunStatus struct {
	Running      bool       `json:"running"`
	SnapshotDate string     `json:"snapshot_date,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}
