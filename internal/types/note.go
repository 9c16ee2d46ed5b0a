// Package types defines the data model shared across the gateway's
// components: vault structure, cached entries, tool invocations, and the
// uniform tool-result envelope. Resource URIs live in internal/resource.
package types

import "time"

type (
	// NoteRef identifies a note by its vault-relative path. Name is always
	// the final path segment.
	NoteRef struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}

	// NoteMetadata is a NoteRef enriched with stat info and, lazily, parsed
	// headers. Headers is nil until enrichment has run for this note — nil
	// and empty-but-non-nil are different states (see discovery §4.3).
	NoteMetadata struct {
		NoteRef
		SizeBytes  int64          `json:"sizeBytes"`
		ModifiedAt time.Time      `json:"modifiedAt"`
		CreatedAt  *time.Time     `json:"createdAt,omitempty"`
		Headers    map[string]any `json:"headers,omitempty"`
	}

	// FolderInfo describes one folder in a VaultStructure. Counts are
	// direct children only, not transitive.
	FolderInfo struct {
		Path            string  `json:"path"`
		Name            string  `json:"name"`
		Parent          *string `json:"parent,omitempty"`
		NotesCount      int     `json:"notesCount"`
		SubfoldersCount int     `json:"subfoldersCount"`
	}

	// VaultStructure is the full folder/note tree as computed by discovery
	// and cached by the cache layer.
	VaultStructure struct {
		RootPath     string         `json:"rootPath"`
		Folders      []FolderInfo   `json:"folders"`
		Notes        []NoteMetadata `json:"notes"`
		TotalNotes   int            `json:"totalNotes"`
		TotalFolders int            `json:"totalFolders"`
	}

	// SearchHit is one result from the upstream simple-query search,
	// optionally enriched with stat metadata.
	SearchHit struct {
		Path     string        `json:"path"`
		Name     string        `json:"name"`
		Snippet  string        `json:"snippet,omitempty"`
		Score    *float64      `json:"score,omitempty"`
		Metadata *NoteMetadata `json:"metadata,omitempty"`
	}

	// ParsedNote is a note's structured header block plus body, as produced
	// by internal/frontmatter.
	ParsedNote struct {
		Headers         map[string]any `json:"headers"`
		Content         string         `json:"content"`
		OriginalContent string         `json:"originalContent"`
	}
)
