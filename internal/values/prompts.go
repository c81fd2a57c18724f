package values

import (
	"fmt"
	"sort"
	"strings"
)

// PromptBuilder constructs the contextual prompt for a single value request.
type PromptBuilder struct{}

func (pb *PromptBuilder) BuildValuePrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Role: Trade documentation assistant. Task: Produce one realistic value for a placeholder field in a maritime shipping document.\n\n")
	fmt.Fprintf(&sb, "Field name: %s\n", req.Name)
	fmt.Fprintf(&sb, "Semantic category: %s\n", req.Category)

	if len(req.Known) > 0 {
		sb.WriteString("\nValues already present in this document:\n")
		names := make([]string, 0, len(req.Known))
		for name := range req.Known {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- %s: %s\n", name, req.Known[name])
		}
	}

	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Reply with the value only. No explanation, no quotes, no markdown.\n")
	sb.WriteString("The value must stay consistent with the document values listed above.\n")
	sb.WriteString("Keep it to a single short line suitable for insertion into the field.\n")
	return sb.String()
}
