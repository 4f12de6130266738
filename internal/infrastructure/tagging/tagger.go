package tagging

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule maps one platform label to its matching pattern. Matching is always
// case-insensitive.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// Tagger evaluates the pattern table uniformly; all domain knowledge lives
// in the table, none in the tagger.
type Tagger struct {
	rules []Rule
}

func New(rules []Rule) *Tagger {
	return &Tagger{rules: rules}
}

// Tags returns the sorted set of labels whose pattern matches the chunk text
// or the source document name. Zero labels is a valid outcome.
func (t *Tagger) Tags(text, sourceDocument string) []string {
	seen := make(map[string]struct{}, 4)
	for _, rule := range t.rules {
		if rule.Pattern.MatchString(text) || rule.Pattern.MatchString(sourceDocument) {
			seen[rule.Label] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// CompileRule builds a case-insensitive rule from an operator-supplied
// pattern string.
func CompileRule(label, pattern string) (Rule, error) {
	if strings.TrimSpace(label) == "" {
		return Rule{}, fmt.Errorf("rule label is empty")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern for %q: %w", label, err)
	}
	return Rule{Label: label, Pattern: re}, nil
}

// DefaultRules is the built-in platform pattern table covering the airframes
// and vehicles the stock manual set describes. Operators extend it through
// the YAML table file without touching the tagger.
func DefaultRules() []Rule {
	specs := []struct{ label, pattern string }{
		{"AH-1", `AH[-_]?1`},
		{"RC-12", `RC[-_]?12`},
		{"RD-12", `RD[-_]?12`},
		{"C-12", `\bC[-_]?12`},
		{"UH-1", `UH[-_]?1`},
		{"EH-1", `EH[-_]?1`},
		{"OH-58", `OH[-_]?58`},
		{"UH-60", `UH[-_]?60`},
		{"CH-47", `CH[-_]?47`},
		{"M1", `\bM1\b`},
		{"M2", `\bM2\b`},
		{"HMMWV", `HMMWV|HUMVEE`},
	}
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		rule, err := CompileRule(s.label, s.pattern)
		if err != nil {
			panic(err)
		}
		rules = append(rules, rule)
	}
	return rules
}
