package domain

import "time"

// Chunk is the atomic retrievable unit: one bounded passage of manual text.
type Chunk struct {
	ID             int      `json:"id"`
	Text           string   `json:"text"`
	SourceDocument string   `json:"source_document"`
	PageNumber     int      `json:"page_number"`
	PlatformTags   []string `json:"platform_tags"`
}

// Metadata describes one knowledge base build.
type Metadata struct {
	BuiltAt       time.Time `json:"built_at"`
	DocumentCount int       `json:"document_count"`
	ChunkCount    int       `json:"chunk_count"`
}

// KnowledgeBase is the immutable result of one ingestion build. It is
// replaced wholesale on rebuild, never mutated in place.
type KnowledgeBase struct {
	Metadata Metadata `json:"metadata"`
	Chunks   []Chunk  `json:"chunks"`
}

// Page is one page of extracted document text, 1-indexed.
type Page struct {
	Number int
	Text   string
}

// HasTag reports whether the chunk carries the given platform tag.
func (c Chunk) HasTag(tag string) bool {
	for _, t := range c.PlatformTags {
		if t == tag {
			return true
		}
	}
	return false
}
