package generators

import (
	"encoding/json"
	"fmt"

	"github.com/drawbridge-dev/drawbridge/internal/mermaid"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// BuildPrompt assembles the generation prompt for one diagram type from the
// language rules: grammar cheat-sheet, a worked example, readability
// constraints, and the caller's input and extracted intent.
func BuildPrompt(t schema.DiagramType, userInput string, intent *schema.Intent) string {
	rules := mermaid.RulesFor(t)

	intentJSON := "{}"
	if intent != nil {
		if b, err := json.Marshal(intent); err == nil {
			intentJSON = string(b)
		}
	}

	return fmt.Sprintf(`Create a Mermaid %s diagram based on the user's input. Follow these EXACT syntax rules:

SYNTAX RULES:
%s

EXAMPLE STRUCTURE:
%s

User Input: %s
Intent Analysis: %s

Requirements:
%s

Generate ONLY the Mermaid code, no explanation.`,
		t, rules.CheatSheet, rules.Example, userInput, intentJSON, rules.Constraints)
}
