package pipeline

import (
	"context"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

const ideasPromptTemplate = `Generate 6 inspiring and diverse diagram ideas to showcase the capabilities of a Mermaid diagram generator.
These will be shown to users when they first visit the application to give them inspiration.

Create ideas that:
1. Cover different diagram types (flowchart, sequence, gantt, ER, class, state, journey, etc.)
2. Span various domains (business, technical, educational, personal)
3. Are relatable and practical for most users
4. Showcase different complexity levels
5. Are modern and relevant to current trends

Return a JSON array with this structure:
[
    {
        "title": "Catchy, descriptive title",
        "description": "Brief explanation of what this would visualize",
        "example_input": "Example text a user might enter to create this",
        "diagram_type": "mermaid_diagram_type",
        "category": "business|technical|educational|personal",
        "complexity": "simple|medium|complex"
    }
]

Make them engaging and cover these areas:
- Software development workflows
- Business processes
- Project management
- System architecture
- User experiences
- Data relationships
- Personal productivity
- Learning/educational content

Focus on practical, real-world scenarios that would genuinely help users.`

const ideasQuery = `if type == "array" then . else .ideas // empty end`

const maxIdeas = 6

// Ideas produces a short list of starter diagram ideas for a consumer
// with no input yet. Like the session stages it never fails: any problem
// with the generation service yields the fixed fallback list.
func (p *Pipeline) Ideas(ctx context.Context) []schema.Idea {
	raw, err := p.completer.Complete(ctx, ideasPromptTemplate)
	if err != nil {
		p.logger.WarnContext(ctx, "idea generation failed, using fallback ideas", "error", err)
		return FallbackIdeas()
	}
	var ideas []schema.Idea
	if err := p.extractor.Extract(raw, ideasQuery, &ideas); err != nil {
		p.logger.WarnContext(ctx, "idea reply could not be decoded, using fallback ideas", "error", err)
		return FallbackIdeas()
	}
	if err := validatePayload(p.schemas.ideas, ideas); err != nil {
		p.logger.WarnContext(ctx, "idea reply failed validation, using fallback ideas", "error", err)
		return FallbackIdeas()
	}
	if len(ideas) > maxIdeas {
		ideas = ideas[:maxIdeas]
	}
	for i := range ideas {
		ideas[i].Complexity = schema.NormalizeComplexity(ideas[i].Complexity)
	}
	return ideas
}

// FallbackIdeas is the fixed inspiration list served when dynamic idea
// generation is unavailable.
func FallbackIdeas() []schema.Idea {
	return []schema.Idea{
		{
			Title:        "E-commerce Order Flow",
			Description:  "Visualize the complete customer order process from cart to delivery",
			ExampleInput: "Show me the process when a customer places an order online, including payment processing, inventory check, and shipping",
			DiagramType:  string(schema.DiagramFlowchart),
			Category:     "business",
			Complexity:   schema.ComplexityMedium,
		},
		{
			Title:        "API Authentication Sequence",
			Description:  "Map out how users authenticate with your REST API",
			ExampleInput: "Create a sequence diagram showing OAuth 2.0 authentication flow between client, auth server, and resource server",
			DiagramType:  string(schema.DiagramSequence),
			Category:     "technical",
			Complexity:   schema.ComplexityMedium,
		},
		{
			Title:        "Mobile App Development Timeline",
			Description:  "Plan your app development project with milestones and deadlines",
			ExampleInput: "Create a project timeline for developing a mobile app over 4 months including design, development, testing, and launch phases",
			DiagramType:  string(schema.DiagramGantt),
			Category:     "business",
			Complexity:   schema.ComplexitySimple,
		},
		{
			Title:        "Database Schema Design",
			Description:  "Design relationships between entities in your database",
			ExampleInput: "Design a database schema for a blog platform with users, posts, comments, and categories",
			DiagramType:  string(schema.DiagramER),
			Category:     "technical",
			Complexity:   schema.ComplexityMedium,
		},
		{
			Title:        "Customer Journey Map",
			Description:  "Understand your customer's experience from discovery to purchase",
			ExampleInput: "Map the customer journey for someone discovering and buying products on our e-commerce website",
			DiagramType:  string(schema.DiagramJourney),
			Category:     "business",
			Complexity:   schema.ComplexitySimple,
		},
		{
			Title:        "Software Architecture Overview",
			Description:  "Visualize the components and relationships in your system",
			ExampleInput: "Show the class structure for a social media application with users, posts, likes, and messaging features",
			DiagramType:  string(schema.DiagramClass),
			Category:     "technical",
			Complexity:   schema.ComplexityComplex,
		},
	}
}
