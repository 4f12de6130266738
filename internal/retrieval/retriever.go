package retrieval

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/mantisproject/mantis/internal/core/domain"
)

const (
	// bm25K1 controls term-frequency saturation: repeated occurrences of
	// one term add less than occurrences of a new term, so distinct-term
	// coverage dominates raw repetition.
	bm25K1 = 1.2

	// tagBoost is the score contribution of a query token that names one
	// of the chunk's platform tags.
	tagBoost = 2.0
)

// Retriever scores every chunk of a knowledge base against a query using
// lexical signals only. Scoring is pure and deterministic; the retriever
// holds no mutable state and is safe for concurrent use.
type Retriever struct {
	tokenizer *Tokenizer
	defaultK  int
}

func New(tokenizer *Tokenizer, defaultK int) *Retriever {
	if tokenizer == nil {
		tokenizer = NewTokenizer(nil)
	}
	if defaultK <= 0 {
		defaultK = 3
	}
	return &Retriever{tokenizer: tokenizer, defaultK: defaultK}
}

func (r *Retriever) Retrieve(
	kb *domain.KnowledgeBase,
	query string,
	k int,
	filter domain.SearchFilter,
) ([]domain.RetrievedChunk, error) {
	tokens := r.tokenizer.Tokenize(query)
	if len(tokens) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyQuery, "tokenize query",
			errors.New("no usable tokens in query"))
	}
	if k <= 0 {
		k = r.defaultK
	}
	if kb == nil || len(kb.Chunks) == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	matchers := compileMatchers(tokens)

	scored := make([]domain.RetrievedChunk, 0, k)
	for _, chunk := range kb.Chunks {
		if !filter.Matches(chunk) {
			continue
		}
		score := scoreChunk(chunk, tokens, matchers)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.RetrievedChunk{Chunk: chunk, Score: score})
	}

	// Score descending, ties broken by chunk id ascending. Never rely on
	// map or slice enumeration order.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// scoreChunk sums a saturated term frequency per matched query token plus a
// bonus when a token names one of the chunk's platform tags. A chunk that
// matches nothing scores zero.
func scoreChunk(chunk domain.Chunk, tokens []string, matchers []*regexp.Regexp) float64 {
	textLower := strings.ToLower(chunk.Text)

	score := 0.0
	for i, token := range tokens {
		tf := float64(len(matchers[i].FindAllStringIndex(textLower, -1)))
		if tf > 0 {
			score += tf * (bm25K1 + 1.0) / (tf + bm25K1)
		}
		if tokenNamesTag(token, chunk.PlatformTags) {
			score += tagBoost
		}
	}
	return score
}

// compileMatchers builds word-boundary matchers so "oil" does not count
// occurrences inside "boil" or "coil".
func compileMatchers(tokens []string) []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		matchers[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
	}
	return matchers
}

func tokenNamesTag(token string, tags []string) bool {
	for _, tag := range tags {
		if canonicalTag(token) == canonicalTag(tag) {
			return true
		}
	}
	return false
}

// canonicalTag folds case and separators so the query token "uh1" matches
// the tag "UH-1".
func canonicalTag(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, "_", "")
}
