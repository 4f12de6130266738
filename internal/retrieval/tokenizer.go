package retrieval

import (
	"regexp"
	"strings"
)

var (
	platformTokenPattern = regexp.MustCompile(`[a-z]{1,2}[-_]?\d{1,2}`)
	platformPartPattern  = regexp.MustCompile(`[a-z]+|\d+`)
	wordTokenPattern     = regexp.MustCompile(`[a-z0-9]+`)
)

// Tokenizer lowercases a query, keeps platform identifiers (AH-1, RC-12)
// intact, strips stopwords and one-character tokens, and drops the component
// parts of platform identifiers so "oh-58" does not also match on "58".
type Tokenizer struct {
	stopwords map[string]struct{}
}

func NewTokenizer(stopwords map[string]struct{}) *Tokenizer {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &Tokenizer{stopwords: stopwords}
}

func (t *Tokenizer) Tokenize(query string) []string {
	lower := strings.ToLower(query)

	platformTokens := platformTokenPattern.FindAllString(lower, -1)

	platformParts := make(map[string]struct{}, len(platformTokens)*2)
	for _, pt := range platformTokens {
		for _, part := range platformPartPattern.FindAllString(pt, -1) {
			platformParts[part] = struct{}{}
		}
	}

	var wordTokens []string
	for _, tok := range wordTokenPattern.FindAllString(lower, -1) {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := t.stopwords[tok]; stop {
			continue
		}
		if _, part := platformParts[tok]; part {
			continue
		}
		wordTokens = append(wordTokens, tok)
	}

	seen := make(map[string]struct{}, len(platformTokens)+len(wordTokens))
	out := make([]string, 0, len(platformTokens)+len(wordTokens))
	for _, tok := range append(platformTokens, wordTokens...) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
