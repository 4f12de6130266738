package domain

// SearchFilter restricts retrieval to chunks whose platform tags intersect
// the requested set. An empty set means no restriction.
type SearchFilter struct {
	PlatformTags []string
}

func (f SearchFilter) Matches(chunk Chunk) bool {
	if len(f.PlatformTags) == 0 {
		return true
	}
	for _, want := range f.PlatformTags {
		if chunk.HasTag(want) {
			return true
		}
	}
	return false
}

// RetrievedChunk pairs a chunk with its lexical relevance score for one query.
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

type Answer struct {
	Text    string           `json:"text"`
	Sources []RetrievedChunk `json:"sources"`
}
