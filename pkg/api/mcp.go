package api

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/hoplite/pkg/ingest"
	"github.com/hazyhaar/hoplite/pkg/kit"
	"github.com/hazyhaar/hoplite/pkg/lint"
)

// RegisterMCPTools registers lint_cards, best_lemma and index_stats.
func RegisterMCPTools(srv *server.MCPServer, l *lint.Linter, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	eps := newEndpoints(l, kit.Chain(kit.Logging(logger, "mcp"), kit.Recover()))

	kit.RegisterMCPTool(srv, mcp.NewTool("lint_cards",
		mcp.WithDescription("Check Ancient Greek study cards for duplicates of the reference deck and of each other, rate their context and suggest cloze deletions."),
		mcp.WithArray("cards", mcp.Required(),
			mcp.Description("Cards to check, each {front, back, tags}"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"front": map[string]any{"type": "string"},
					"back":  map[string]any{"type": "string"},
					"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"front"},
			}),
		),
	), eps.lint, decodeCards)

	kit.RegisterMCPTool(srv, mcp.NewTool("best_lemma",
		mcp.WithDescription("Resolve the dictionary headword of a Greek word or short phrase."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Greek word or phrase")),
	), eps.lemma, func(req mcp.CallToolRequest) (any, error) {
		text, _ := req.GetArguments()["text"].(string)
		return &lemmaReq{Text: text}, nil
	})

	kit.RegisterMCPTool(srv, mcp.NewTool("index_stats",
		mcp.WithDescription("Report reference index sizes and lemma cache counters."),
	), eps.stats, func(mcp.CallToolRequest) (any, error) {
		return nil, nil
	})
}

func decodeCards(req mcp.CallToolRequest) (any, error) {
	raw, ok := req.GetArguments()["cards"]
	if !ok {
		return nil, fmt.Errorf("cards is required")
	}
	// Arguments arrive as generic JSON values; round-trip them into cards.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cards []ingest.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}
	return &lintReq{Cards: cards}, nil
}
