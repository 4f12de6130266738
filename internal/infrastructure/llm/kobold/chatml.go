package kobold

import (
	"strings"

	"github.com/mantisproject/mantis/internal/core/domain"
)

const (
	chatMLStart = "<|im_start|>"
	chatMLEnd   = "<|im_end|>"
)

// renderChatML flattens role-tagged messages into the ChatML wire format the
// local model was trained on, leaving the assistant turn open for the
// completion.
func renderChatML(messages []domain.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(chatMLStart)
		b.WriteString(m.Role)
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString(chatMLEnd)
		b.WriteString("\n")
	}
	b.WriteString(chatMLStart)
	b.WriteString("assistant\n")
	return b.String()
}
