package chunking

import (
	"regexp"
	"strings"

	"github.com/mantisproject/mantis/internal/core/domain"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Splitter segments page texts into bounded chunks, preferring sentence
// boundaries over hard cuts. Sizes are in runes.
type Splitter struct {
	ChunkSize     int
	Overlap       int
	MinChunkChars int
}

func NewSplitter(chunkSize, overlap, minChunkChars int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if minChunkChars < 0 {
		minChunkChars = 0
	}
	return &Splitter{
		ChunkSize:     chunkSize,
		Overlap:       overlap,
		MinChunkChars: minChunkChars,
	}
}

// Split produces chunk candidates without IDs; every candidate records its
// originating page and source document. Candidates shorter than
// MinChunkChars are dropped as noise, not errors.
func (s *Splitter) Split(pages []domain.Page, sourceDocument string) []domain.Chunk {
	var out []domain.Chunk
	for _, page := range pages {
		for _, text := range s.splitPage(page.Text) {
			text = strings.TrimSpace(text)
			if len([]rune(text)) < s.MinChunkChars || text == "" {
				continue
			}
			out = append(out, domain.Chunk{
				Text:           text,
				SourceDocument: sourceDocument,
				PageNumber:     page.Number,
			})
		}
	}
	return out
}

func (s *Splitter) splitPage(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	var chunks []string
	var current []rune
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		runes := []rune(sentence)

		// A single sentence longer than the chunk size falls back to a
		// hard rune cut.
		if len(runes) > s.ChunkSize {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = nil
			}
			chunks = append(chunks, s.hardCut(runes)...)
			continue
		}

		if len(current) > 0 && len(current)+1+len(runes) > s.ChunkSize {
			chunks = append(chunks, string(current))
			current = s.carryOverlap(current, s.ChunkSize-len(runes)-1)
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}

func (s *Splitter) hardCut(runes []rune) []string {
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// carryOverlap seeds the next chunk with the trailing slice of the previous
// one so context survives the cut. The carried slice is capped so the next
// chunk still fits the size limit once its first sentence lands.
func (s *Splitter) carryOverlap(prev []rune, max int) []rune {
	if s.Overlap <= 0 || max <= 0 || len(prev) == 0 {
		return nil
	}
	n := s.Overlap
	if n > max {
		n = max
	}
	if n > len(prev) {
		n = len(prev)
	}
	tail := prev[len(prev)-n:]
	out := make([]rune, len(tail))
	copy(out, tail)
	return out
}
