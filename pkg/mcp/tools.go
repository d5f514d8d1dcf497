package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/drawbridge-dev/drawbridge/internal/mermaid"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// handleRequest analyzes user input and returns diagram-type suggestions.
// The session is parked in the registry so diagram.generate can resume it.
func (s *DiagramServer) handleRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError("input is required"), nil
	}

	sess := schema.NewSession(input)
	s.pipeline.Run(ctx, sess)
	s.sessions.Put(sess)
	s.archive(ctx, sess)

	return marshalResult(map[string]any{
		"session_id":  sess.ID,
		"step":        sess.Step,
		"intent":      sess.Intent,
		"suggestions": sess.Suggestions,
	})
}

// handleGenerate produces the diagram for a chosen type. With a
// session_id it resumes the parked session; otherwise it runs a fresh
// session from input end to end.
func (s *DiagramServer) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeStr, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type is required"), nil
	}
	diagramType, err := schema.ParseDiagramType(typeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown diagram type: %v", err)), nil
	}

	sessionID := req.GetString("session_id", "")
	var sess *schema.Session
	if sessionID != "" {
		parked, ok := s.sessions.Take(sessionID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("session %q not found or expired; retry with input only", sessionID)), nil
		}
		sess = parked
	} else {
		input := req.GetString("input", "")
		if input == "" {
			return mcp.NewToolResultError("input is required when session_id is omitted"), nil
		}
		sess = schema.NewSession(input)
		s.pipeline.Run(ctx, sess)
	}

	if selErr := sess.Select(diagramType); selErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("selection failed: %v", selErr)), nil
	}
	s.pipeline.Run(ctx, sess)
	s.archive(ctx, sess)

	result := map[string]any{
		"session_id":      sess.ID,
		"type":            string(diagramType),
		"diagram":         sess.DiagramSource,
		"recommendations": sess.Recommendations,
		"step":            sess.Step,
		"trace":           sess.Trace,
	}
	if req.GetBool("export_html", false) {
		title := exportTitle(sess, diagramType)
		result["html"] = mermaid.ExportHTML(sess.DiagramSource, title)
		result["file_name"] = mermaid.FileName(title, "html")
	}
	return marshalResult(result)
}

// handleValidate checks Mermaid source and repairs it when broken.
func (s *DiagramServer) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}
	typeStr, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type is required"), nil
	}
	diagramType, err := schema.ParseDiagramType(typeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown diagram type: %v", err)), nil
	}

	verdict, repaired, status := s.pipeline.ValidateAndRepair(ctx, source, diagramType)
	return marshalResult(map[string]any{
		"valid":   verdict.Valid,
		"message": verdict.Message,
		"status":  string(status),
		"source":  repaired,
	})
}

// handleIdeas returns starter diagram ideas.
func (s *DiagramServer) handleIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return marshalResult(map[string]any{
		"ideas": s.pipeline.Ideas(ctx),
	})
}

// handleHistory lists recently archived sessions, or fetches a single
// one when session_id is given.
func (s *DiagramServer) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return marshalResult(map[string]any{"sessions": []any{}})
	}
	if sessionID := req.GetString("session_id", ""); sessionID != "" {
		record, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
		}
		return marshalResult(map[string]any{"sessions": []any{record}})
	}
	limit := int(req.GetFloat("limit", 20))
	records, err := s.store.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history query failed: %v", err)), nil
	}
	return marshalResult(map[string]any{"sessions": records})
}

// archive stores the session when a store is configured. Archive
// failures are logged, never surfaced to the tool caller.
func (s *DiagramServer) archive(ctx context.Context, sess *schema.Session) {
	if s.store == nil {
		return
	}
	if err := s.store.Archive(ctx, sess); err != nil {
		s.logger.WarnContext(ctx, "failed to archive session", "session_id", sess.ID, "error", err)
	}
}

// exportTitle picks a human title for exported files: the suggestion
// matching the selected type when one exists, otherwise a generic label.
func exportTitle(sess *schema.Session, t schema.DiagramType) string {
	for _, sug := range sess.Suggestions {
		if sug.Type == t && sug.Title != "" {
			return sug.Title
		}
	}
	return "Generated Diagram"
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
