package domain

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is the structured payload handed to the generation service. It is
// built fresh per query and never persisted.
type Prompt struct {
	Messages  []Message `json:"messages"`
	MaxLength int       `json:"max_length"`
}

// Size is the total content length in runes, the unit of the prompt budget.
func (p Prompt) Size() int {
	total := 0
	for _, m := range p.Messages {
		total += len([]rune(m.Content))
	}
	return total
}
