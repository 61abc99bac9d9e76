package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/health-assistant/internal/core/ports"
)

const serverName = "health-assistant"

const maxToolLimit = 100

// Server exposes the assistant as MCP tools over stdio.
type Server struct {
	assistant       ports.Assistant
	searchLimit     int
	suggestionLimit int
	mcp             *server.MCPServer
}

type Options struct {
	Version         string
	SearchLimit     int
	SuggestionLimit int
}

func NewServer(assistant ports.Assistant, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		assistant:       assistant,
		searchLimit:     opts.SearchLimit,
		suggestionLimit: opts.SuggestionLimit,
		mcp:             server.NewMCPServer(serverName, opts.Version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve blocks answering JSON-RPC requests read from in until ctx is done
// or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	slog.InfoContext(ctx, "mcp_server_started", "corpus_size", s.assistant.CorpusSize())
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("ask_health_question",
		mcp.WithDescription("Answer a Vietnamese health question from the curated Q/A corpus. Returns the answer with a medical disclaimer, the supporting document and a confidence of high or low."),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question text, with or without Vietnamese diacritics.")),
	), s.askHealthQuestion)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Rank corpus documents by relevance to a question, most relevant first."),
		mcp.WithString("question", mcp.Required(), mcp.Description("Search text.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of documents."), mcp.Min(1), mcp.Max(maxToolLimit)),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("suggest_questions",
		mcp.WithDescription("Sample stored questions, optionally restricted to those containing a topic."),
		mcp.WithString("topic", mcp.Description("Case-insensitive substring filter.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of questions."), mcp.Min(1), mcp.Max(maxToolLimit)),
	), s.suggestQuestions)

	s.mcp.AddTool(mcp.NewTool("corpus_statistics",
		mcp.WithDescription("Report corpus size, distinct sources and keyword category counts."),
	), s.corpusStatistics)
}

func (s *Server) askHealthQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}
	return jsonResult(s.assistant.GenerateAnswer(ctx, question))
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}
	limit, err := toolLimit(req, s.searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.assistant.SearchRelevantDocs(ctx, question, limit))
}

func (s *Server) suggestQuestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := toolLimit(req, s.suggestionLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic := strings.TrimSpace(req.GetString("topic", ""))
	return jsonResult(s.assistant.SuggestedQuestions(ctx, topic, limit))
}

func (s *Server) corpusStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.assistant.Statistics(ctx))
}

// toolLimit returns fallback when the caller leaves limit out.
func toolLimit(req mcp.CallToolRequest, fallback int) (int, error) {
	if _, ok := req.GetArguments()["limit"]; !ok {
		return fallback, nil
	}
	limit := req.GetInt("limit", fallback)
	if limit < 1 || limit > maxToolLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxToolLimit)
	}
	return limit, nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
