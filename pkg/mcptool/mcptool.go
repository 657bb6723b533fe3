// Package mcptool exposes the paraphrase operation as a Model Context Protocol tool.
package mcptool

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/pkg/paraphrase"
)

// ToolName is the name the paraphrase tool is registered under.
const ToolName = "paraphrase"

// Input is the tool's argument object.
type Input struct {
	Sentence string `json:"sentence" jsonschema:"the sentence to reword"`
}

// NewServer creates an MCP server with the paraphrase tool registered.
func NewServer(p paraphrase.Paraphraser, version string, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "rephrase", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Reword a sentence many different ways while keeping its meaning. Returns one rewording per line.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in Input) (*mcp.CallToolResult, any, error) {
		text, err := p.Paraphrase(context.WithoutCancel(ctx), in.Sentence)
		if err != nil {
			if !errors.Is(err, paraphrase.ErrSentenceRequired) {
				logger.Error("paraphrase tool call failed", zap.Error(err))
			}
			return errorResult(err), nil, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	})

	return server
}

// Handler serves server over the streamable HTTP transport.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
