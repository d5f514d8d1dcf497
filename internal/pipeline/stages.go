package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/internal/mermaid"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

const intentPromptTemplate = `Analyze the user's input to understand their intent for creating a diagram.
Extract key information that will help determine the best diagram type and content.

User Input: %s

Analyze and return a JSON object with:
{
    "primary_intent": "What the user wants to visualize (process, data, relationships, etc.)",
    "domain": "The subject domain (business, technical, academic, etc.)",
    "complexity": "simple|medium|complex based on the described scope",
    "entities": ["List of key entities, objects, or components mentioned"],
    "relationships": ["List of relationships or interactions described"],
    "temporal_aspect": "true/false - does this involve time sequences or workflows",
    "hierarchical_aspect": "true/false - does this involve hierarchies or classifications",
    "data_visualization": "true/false - is this primarily about showing data/statistics",
    "process_flow": "true/false - is this about showing a process or workflow",
    "system_design": "true/false - is this about system architecture or design"
}

Be specific and extract concrete information from the user's description.`

const suggestionPromptTemplate = `Based on the intent analysis, suggest the 3-4 most appropriate Mermaid diagram types.
Consider the user's needs and provide practical recommendations.

Intent Analysis: %s

Available Diagram Types:
- flowchart: Process flows, decision trees, workflows
- sequenceDiagram: Interactions over time, API calls, communication flows
- classDiagram: Object-oriented design, data structures, system components
- erDiagram: Database design, entity relationships, data modeling
- stateDiagram: State machines, system states, lifecycle management
- gantt: Project timelines, scheduling, task management
- journey: User experience, customer journeys, process experiences
- pie: Data distribution, statistics, proportional data
- mindmap: Brainstorming, concept mapping, hierarchical topics
- gitgraph: Version control workflows, branching strategies

Return a JSON array of suggestions:
[
    {
        "type": "diagram_type",
        "title": "Descriptive title for this specific use case",
        "description": "Why this diagram type fits the user's needs",
        "use_case": "Specific application for the user's scenario",
        "complexity": "simple|medium|complex"
    }
]

Rank suggestions by relevance. Include 3-4 options to give the user choice.`

const recommendationPromptTemplate = `Based on the user's input and generated diagram, suggest 3-5 related diagrams or improvements.

Original Input: %s
Generated Diagram Type: %s
Analysis: %s

Provide actionable recommendations such as:
- Related diagram types that could complement this one
- Different perspectives or levels of detail
- Additional aspects to explore
- Variations or extensions of the current diagram
- Alternative visualization approaches

Focus on practical, valuable suggestions that would genuinely help the user.

Return as a JSON array of recommendation strings:
["recommendation 1", "recommendation 2", ...]`

// gojq queries that tolerate replies wrapped in an envelope object as
// well as bare arrays.
const (
	suggestionsQuery     = `if type == "array" then . else .suggestions // empty end`
	recommendationsQuery = `if type == "array" then . else .recommendations // empty end`
)

// flexBool unmarshals either a JSON boolean or the strings "true"/"false".
// The intent prompt literally shows "true/false" as string examples, so
// replies arrive in both spellings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"true"`:
		*b = true
	case "false", `"false"`, "null":
		*b = false
	default:
		return fmt.Errorf("cannot decode %s as boolean", data)
	}
	return nil
}

// intentPayload is the wire shape of the intent reply before conversion
// to schema.Intent.
type intentPayload struct {
	PrimaryIntent      string   `json:"primary_intent"`
	Domain             string   `json:"domain"`
	Complexity         string   `json:"complexity"`
	Entities           []string `json:"entities"`
	Relationships      []string `json:"relationships"`
	TemporalAspect     flexBool `json:"temporal_aspect"`
	HierarchicalAspect flexBool `json:"hierarchical_aspect"`
	DataVisualization  flexBool `json:"data_visualization"`
	ProcessFlow        flexBool `json:"process_flow"`
	SystemDesign       flexBool `json:"system_design"`
}

type suggestionPayload struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UseCase     string `json:"use_case"`
	Complexity  string `json:"complexity"`
}

func (p *Pipeline) analyzeIntent(ctx context.Context, s *schema.Session) {
	intent, err := p.intentFor(ctx, s.UserInput)
	if err != nil {
		p.logger.WarnContext(ctx, "intent analysis failed, continuing with neutral intent", "error", err)
		s.Intent = schema.NeutralIntent()
		s.Touch(StepIntentFallback)
		return
	}
	s.Intent = intent
	s.Touch(StepIntentAnalyzed)
}

func (p *Pipeline) intentFor(ctx context.Context, userInput string) (*schema.Intent, error) {
	raw, err := p.completer.Complete(ctx, fmt.Sprintf(intentPromptTemplate, userInput))
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeGeneration, "intent completion failed").WithStage("intent_analysis").WithCause(err)
	}
	var doc any
	if err := llm.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	if err := validatePayload(p.schemas.intent, doc); err != nil {
		return nil, err
	}
	var payload intentPayload
	if err := llm.DecodeJSON(raw, &payload); err != nil {
		return nil, err
	}
	return &schema.Intent{
		PrimaryIntent:      payload.PrimaryIntent,
		Domain:             payload.Domain,
		Complexity:         schema.NormalizeComplexity(payload.Complexity),
		Entities:           payload.Entities,
		Relationships:      payload.Relationships,
		TemporalAspect:     bool(payload.TemporalAspect),
		HierarchicalAspect: bool(payload.HierarchicalAspect),
		DataVisualization:  bool(payload.DataVisualization),
		ProcessFlow:        bool(payload.ProcessFlow),
		SystemDesign:       bool(payload.SystemDesign),
	}, nil
}

func (p *Pipeline) suggest(ctx context.Context, s *schema.Session) {
	suggestions, err := p.suggestionsFor(ctx, s.Intent)
	if err != nil {
		p.logger.WarnContext(ctx, "suggestion stage failed, continuing with generic suggestion", "error", err)
		s.Suggestions = []schema.Suggestion{schema.GenericSuggestion()}
		s.Touch(StepSuggestionsFallback)
		return
	}
	s.Suggestions = p.ranker.Rank(s.Intent, suggestions)
	s.Touch(StepSuggestionsGenerated)
}

func (p *Pipeline) suggestionsFor(ctx context.Context, intent *schema.Intent) ([]schema.Suggestion, error) {
	intentJSON, err := json.Marshal(intent)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeDecode, "serialize intent for prompt").WithCause(err)
	}
	raw, err := p.completer.Complete(ctx, fmt.Sprintf(suggestionPromptTemplate, intentJSON))
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeGeneration, "suggestion completion failed").WithStage("suggestion").WithCause(err)
	}
	var payloads []suggestionPayload
	if err := p.extractor.Extract(raw, suggestionsQuery, &payloads); err != nil {
		return nil, err
	}
	if err := validatePayload(p.schemas.suggestions, payloads); err != nil {
		return nil, err
	}

	suggestions := make([]schema.Suggestion, 0, len(payloads))
	for _, payload := range payloads {
		t, err := schema.ParseDiagramType(payload.Type)
		if err != nil {
			// Unknown types are skipped, not fatal: the rest of the
			// reply is usually still usable.
			p.logger.WarnContext(ctx, "skipping suggestion with unknown diagram type", "type", payload.Type)
			continue
		}
		suggestions = append(suggestions, schema.Suggestion{
			Type:        t,
			Title:       payload.Title,
			Description: payload.Description,
			UseCase:     payload.UseCase,
			Complexity:  schema.NormalizeComplexity(payload.Complexity),
		})
	}
	if len(suggestions) == 0 {
		return nil, schema.NewError(schema.ErrCodeValidation, "no usable suggestions in reply").WithStage("suggestion")
	}
	return suggestions, nil
}

func (p *Pipeline) generate(ctx context.Context, s *schema.Session) {
	t := *s.SelectedType

	gen, ok := p.registry.For(t)
	if !ok {
		p.logger.ErrorContext(ctx, "no generator registered for diagram type", "type", t)
		s.DiagramSource = mermaid.FallbackDiagram(s.UserInput, t)
		s.Touch(StepDiagramFallback)
		return
	}

	source, err := gen.Generate(ctx, s.UserInput, s.Intent)
	if err != nil {
		p.logger.WarnContext(ctx, "generation failed, using fallback template", "type", t, "error", err)
		s.DiagramSource = mermaid.FallbackDiagram(s.UserInput, t)
		s.Touch(StepDiagramFallback)
		return
	}

	// The ladder's final text is stored whatever the outcome: degraded
	// output is still more useful than a generic template, and the
	// status in the step label tells the consumer what they got.
	valid, repaired, status := p.ladder.Run(ctx, source, t)
	s.DiagramSource = repaired
	if !valid {
		p.logger.WarnContext(ctx, "diagram could not be repaired, keeping best-effort text", "type", t, "status", string(status))
	}
	if status == mermaid.StatusValid {
		s.Touch(StepDiagramGenerated)
	} else {
		s.Touch(StepDiagramGenerated + " (" + string(status) + ")")
	}
}

func (p *Pipeline) recommend(ctx context.Context, s *schema.Session) {
	recs, err := p.recommendationsFor(ctx, s)
	if err != nil {
		p.logger.WarnContext(ctx, "recommendation stage failed, using generic recommendations", "error", err)
		s.Recommendations = genericRecommendations()
		s.Touch(StepRecommendationsFallback)
		return
	}
	s.Recommendations = recs
	s.Touch(StepRecommendationsGenerated)
}

func (p *Pipeline) recommendationsFor(ctx context.Context, s *schema.Session) ([]string, error) {
	intentJSON, err := json.Marshal(s.Intent)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeDecode, "serialize intent for prompt").WithCause(err)
	}
	prompt := fmt.Sprintf(recommendationPromptTemplate, s.UserInput, diagramKeyword(s.DiagramSource), intentJSON)
	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeGeneration, "recommendation completion failed").WithStage("recommendation").WithCause(err)
	}
	var recs []string
	if err := p.extractor.Extract(raw, recommendationsQuery, &recs); err != nil {
		return nil, err
	}
	if err := validatePayload(p.schemas.recommendations, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func genericRecommendations() []string {
	return []string{
		"Try creating a complementary diagram from a different perspective",
		"Consider breaking down complex parts into separate diagrams",
		"Add more detail to specific sections that interest you most",
	}
}

// diagramKeyword reports the leading Mermaid keyword of a diagram, used
// to describe the diagram's kind in follow-up prompts.
func diagramKeyword(source string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0]
		}
	}
	return "unknown"
}
