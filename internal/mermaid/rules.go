// Package mermaid holds static knowledge of the Mermaid diagram language:
// per-type grammar openers, balancing rules, known-bad patterns and their
// fixes, plus the validator and repair ladder built on top of them.
package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Version is the Mermaid release the generated source targets. Exported
// HTML wrappers pin the rendering library to this version.
const Version = "11.6.0"

// CDNURL returns the pinned Mermaid script URL for HTML export.
func CDNURL() string {
	return fmt.Sprintf("https://cdn.jsdelivr.net/npm/mermaid@%s/dist/mermaid.min.js", Version)
}

// Rules is the static language knowledge for one diagram type: how its
// source must open, what to tell the generation service about its grammar,
// and what to fall back to when generation fails outright.
type Rules struct {
	// Opener matches the required first non-blank line.
	Opener *regexp.Regexp

	// CheatSheet is the grammar summary embedded in generation prompts.
	CheatSheet string

	// Example is a small worked example embedded in generation prompts.
	Example string

	// Constraints are readability limits embedded in generation prompts.
	Constraints string

	// Fallback is the static template substituted when generation fails.
	// %s slots receive a sanitized snippet of the user input, if present.
	Fallback string
}

var rulesTable = map[schema.DiagramType]*Rules{
	schema.DiagramFlowchart: {
		Opener: regexp.MustCompile(`^flowchart\s+(TD|TB|BT|LR|RL)$`),
		CheatSheet: `1. Start with: flowchart TD (or LR for left-right)
2. Node shapes: rectangle A[Text], rounded A(Text), decision A{Text}, circle A((Text)), stadium A([Text])
3. Arrows: --> (solid), -.-> (dotted)
4. Labels on arrows: A -->|"label"| B
5. Use short node IDs (A, B, C, ...)`,
		Example: `flowchart TD
    A[Start] --> B{Decision}
    B -->|"Yes"| C[Action 1]
    B -->|"No"| D[Action 2]
    C --> E[End]
    D --> E`,
		Constraints: `- Use diamonds for decisions and rectangles for processes
- Label decision arrows
- Maximum 15 nodes for clarity`,
		Fallback: `flowchart TD
    A[Start: %s] --> B[Process]
    B --> C{Decision}
    C -->|Yes| D[Success]
    C -->|No| E[Alternative]
    D --> F[End]
    E --> F`,
	},
	schema.DiagramSequence: {
		Opener: regexp.MustCompile(`^sequenceDiagram$`),
		CheatSheet: `1. Start with: sequenceDiagram
2. Participants: participant A as ActorName
3. Messages: solid A->>B: Message, return B-->>A: Response, self A->>A: Action
4. Activation: activate A / deactivate A
5. Notes: Note right of A: text
6. Blocks: loop ... end, alt ... else ... end`,
		Example: `sequenceDiagram
    participant U as User
    participant S as System
    participant D as Database
    U->>S: Request login
    activate S
    S->>D: Validate credentials
    D-->>S: User data
    S-->>U: Login success
    deactivate S`,
		Constraints: `- Identify the actors from the description and show interactions in order
- Maximum 8 participants and 15 messages for clarity`,
		Fallback: `sequenceDiagram
    participant User
    participant System
    User->>System: Request
    System->>System: Process
    System-->>User: Response`,
	},
	schema.DiagramGantt: {
		Opener: regexp.MustCompile(`^gantt$`),
		CheatSheet: `1. Start with: gantt
2. Then: title Project Title, dateFormat YYYY-MM-DD
3. Sections: section Name
4. Tasks: Task Name : taskId, 2025-01-01, 5d
5. Task modifiers: milestone, active, done, crit
6. Dependencies: Task 2 : task2, after task1, 3d`,
		Example: `gantt
    title Project Timeline
    dateFormat YYYY-MM-DD
    section Planning
    Requirements : requirements, 2025-01-01, 5d
    Design : design, after requirements, 7d
    section Development
    Implementation : crit, impl, after design, 14d
    Testing : test, after impl, 5d`,
		Constraints: `- Organize tasks into meaningful sections with realistic durations
- Include key milestones
- Maximum 15 tasks across 4 sections
- Use dates starting from 2025-01-01`,
		Fallback: `gantt
    title Project Timeline
    dateFormat YYYY-MM-DD
    section Phase 1
    Planning : planning, 2025-01-01, 5d
    Design : design, after planning, 3d
    section Phase 2
    Implementation : impl, after design, 10d
    Testing : testing, after impl, 5d`,
	},
	schema.DiagramClass: {
		Opener: regexp.MustCompile(`^classDiagram$`),
		CheatSheet: `1. Start with: classDiagram
2. Class definition:
   class ClassName {
       +String attribute
       +method() ReturnType
   }
3. Visibility: + public, - private, # protected, ~ package
4. Relationships: inheritance <|--, composition *--, aggregation o--, association --, dependency ..>`,
		Example: `classDiagram
    class Animal {
        +String name
        +int age
        +makeSound() String
    }
    class Dog {
        +String breed
        +bark() void
    }
    Animal <|-- Dog`,
		Constraints: `- Identify classes from the description with typed attributes and methods
- Show inheritance and composition where they apply
- Maximum 6 classes for clarity`,
		Fallback: `classDiagram
    class MainClass {
        +int id
        +string name
        +process() void
    }
    class RelatedClass {
        +int id
        +int reference
        +getData() string
    }
    MainClass --> RelatedClass`,
	},
	schema.DiagramState: {
		Opener: regexp.MustCompile(`^stateDiagram(-v2)?$`),
		CheatSheet: `1. Start with: stateDiagram-v2
2. Initial state: [*] --> FirstState
3. Final state: LastState --> [*]
4. Transitions: StateA --> StateB : event
5. Composite states: state Name { [*] --> Sub }
6. Choice: state choice_state <<choice>>`,
		Example: `stateDiagram-v2
    [*] --> Idle
    Idle --> Processing : start
    Processing --> Success : complete
    Processing --> Error : fail
    Success --> [*]
    Error --> Idle : retry`,
		Constraints: `- Include initial [*] and final states where appropriate
- Label transitions with their triggering events
- Consider error states and recovery paths
- Maximum 10 states for clarity`,
		Fallback: `stateDiagram-v2
    [*] --> Initial
    Initial --> Processing : start
    Processing --> Success : complete
    Processing --> Error : fail
    Success --> [*]
    Error --> Initial : retry`,
	},
	schema.DiagramER: {
		Opener: regexp.MustCompile(`^erDiagram$`),
		CheatSheet: `1. Start with: erDiagram
2. Entity definition:
   ENTITY_NAME {
       int attribute_name PK
   }
3. Use SINGLE curly braces, never double
4. Attribute constraints: PK, FK, UK
5. Relationships: one-to-one ||--||, one-to-many ||--o{, many-to-many }o--o{
6. Relationship syntax: ENTITY1 ||--o{ ENTITY2 : places`,
		Example: `erDiagram
    CUSTOMER {
        int customer_id PK
        string name
        string email UK
    }
    ORDER {
        int order_id PK
        int customer_id FK
        datetime order_date
    }
    CUSTOMER ||--o{ ORDER : places`,
		Constraints: `- Identify entities from the description with typed attributes
- Use proper primary and foreign keys
- Show cardinality on every relationship
- Maximum 6 entities for clarity
- CRITICAL: single curly braces only, never double`,
		Fallback: `erDiagram
    ENTITY1 {
        int id PK
        string name
        datetime created_at
    }
    ENTITY2 {
        int id PK
        int entity1_id FK
        string description
    }
    ENTITY1 ||--o{ ENTITY2 : has`,
	},
	schema.DiagramJourney: {
		Opener: regexp.MustCompile(`^journey$`),
		CheatSheet: `1. Start with: journey
2. Title: title Journey Title
3. Sections: section Name
4. Tasks: Task Name : score: Actor
5. Scores: 1 (very dissatisfied) to 5 (very satisfied)`,
		Example: `journey
    title User Registration Journey
    section Discovery
    Visit Website : 3: User
    Browse Features : 4: User
    section Registration
    Click Sign Up : 5: User
    Fill Form : 2: User`,
		Constraints: `- Organize the journey into logical sections
- Assign realistic satisfaction scores (1-5)
- Maximum 12 tasks across 4 sections`,
		Fallback: `journey
    title User Journey
    section Discovery
    Find Service : 3: User
    Research Options : 4: User
    section Engagement
    Sign Up : 5: User
    Use Service : 4: User`,
	},
	schema.DiagramPie: {
		Opener: regexp.MustCompile(`^pie(\s+title\s+.+)?$`),
		CheatSheet: `1. Start with: pie title "Chart Title"
2. Data format: "Label" : value
3. Values are numbers; labels in double quotes`,
		Example: `pie title "Market Share Distribution"
    "Company A" : 42.5
    "Company B" : 28.3
    "Company C" : 15.2
    "Others" : 14.0`,
		Constraints: `- Extract categories and values from the description; estimate when absent
- Percentages should add up to approximately 100
- Maximum 8 categories for readability`,
		Fallback: `pie title "Data Distribution"
    "Category A" : 40
    "Category B" : 30
    "Category C" : 20
    "Category D" : 10`,
	},
	schema.DiagramGitGraph: {
		Opener: regexp.MustCompile(`^gitgraph$`),
		CheatSheet: `1. Start with: gitgraph
2. Commit: commit id: "Message"
3. Branch: branch branch-name
4. Checkout: checkout branch-name
5. Merge: merge branch-name`,
		Example: `gitgraph
    commit id: "Initial commit"
    branch feature-b
    checkout feature-b
    commit id: "Start feature B"
    checkout main
    commit id: "Fix bug"
    merge feature-b`,
		Constraints: `- Use meaningful commit messages
- Show branching and merging strategies from the description
- Maximum 15 commits and 4 branches for clarity`,
		Fallback: `gitgraph
    commit id: "Initial commit"
    branch feature
    checkout feature
    commit id: "Add feature"
    checkout main
    commit id: "Update main"
    merge feature`,
	},
	schema.DiagramMindmap: {
		Opener: regexp.MustCompile(`^mindmap$`),
		CheatSheet: `1. Start with: mindmap
2. Root node: root((Root Topic))
3. Child nodes are indented with spaces
4. Shapes: [square], (rounded), ((circle))`,
		Example: `mindmap
  root((Project Management))
    Planning
      Requirements
      Timeline
    Execution
      Development
      Testing`,
		Constraints: `- One central topic branching into categories and subcategories
- Maximum 4 levels deep and 20 nodes total
- Keep node names concise`,
		Fallback: `mindmap
  root((%s))
    Topic 1
      Subtopic A
      Subtopic B
    Topic 2
      Subtopic C
      Subtopic D`,
	},
}

// erRelationship matches ER cardinality tokens such as ||--o{ and }o--||.
// The braces inside them are cardinality markers, not block delimiters, so
// the validator masks them before running the balance check.
var erRelationship = regexp.MustCompile(`(\|\||\}o|\}\||\|o)(--|\.\.)(o\{|\|\{|\|\||o\|)`)

// MaskERRelationships replaces ER cardinality tokens with spaces of equal
// length so delimiter checking sees only real block braces.
func MaskERRelationships(source string) string {
	return erRelationship.ReplaceAllStringFunc(source, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

// RulesFor returns the language rules for the given diagram type. Unknown
// types fall back to the flowchart rules so lookups are total.
func RulesFor(t schema.DiagramType) *Rules {
	if r, ok := rulesTable[t]; ok {
		return r
	}
	return rulesTable[schema.DiagramFlowchart]
}

// FallbackDiagram returns the static template for the given type, embedding
// a sanitized snippet of the user input where the template has a slot.
// The result always passes Validate for its type.
func FallbackDiagram(userInput string, t schema.DiagramType) string {
	r := RulesFor(t)
	if !strings.Contains(r.Fallback, "%s") {
		return r.Fallback
	}
	snippet := sanitizeSnippet(userInput, 30)
	if snippet == "" {
		snippet = "Main Topic"
	}
	return fmt.Sprintf(r.Fallback, snippet)
}

// sanitizeSnippet strips characters that would unbalance delimiters or
// quotes when embedded into a template, and truncates to max runes.
func sanitizeSnippet(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '(', ')', '[', ']', '{', '}', '"', '\'', '\n', '\r', '|':
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	runes := []rune(out)
	if len(runes) > max {
		out = strings.TrimSpace(string(runes[:max])) + "..."
	}
	return out
}
