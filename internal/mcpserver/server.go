// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Retrace tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/retracehq/retrace/internal/match"
	"github.com/retracehq/retrace/internal/models"
	"github.com/retracehq/retrace/internal/store"
)

// Server wraps the MCP server with Retrace tools. It exposes the same
// public item semantics as the HTTP API: contact fields never leave it.
type Server struct {
	mcp    *server.MCPServer
	items  store.ItemStore
	engine *match.Engine
}

// New creates a new MCP server with all Retrace tools registered.
func New(items store.ItemStore, engine *match.Engine) *Server {
	s := &Server{items: items, engine: engine}

	s.mcp = server.NewMCPServer(
		"Retrace",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Search lost-and-found reports by disposition, category, and location."),
		mcp.WithString("type", mcp.Description("Disposition filter: lost or found")),
		mcp.WithString("category", mcp.Description("Category filter, e.g. Mobile, Wallet, Keys")),
		mcp.WithString("city", mcp.Description("City filter")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("get_item",
		mcp.WithDescription("Read a single lost-and-found report by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	), s.getItem)

	s.mcp.AddTool(mcp.NewTool("report_item",
		mcp.WithDescription("File a lost or found report and run match discovery against "+
			"existing reports of the opposite disposition."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Disposition: lost or found")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short title for the item")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category, e.g. Mobile, Wallet, Keys")),
		mcp.WithString("city", mcp.Required(), mcp.Description("City where it was lost or found")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Poster contact email for match routing")),
		mcp.WithString("description", mcp.Description("Free-text description")),
		mcp.WithString("area", mcp.Description("Area within the city")),
	), s.reportItem)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.items.ListItems(store.ItemFilter{
		Type:     req.GetString("type", ""),
		Category: req.GetString("category", ""),
		City:     req.GetString("city", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.items.GetItem(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) reportItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if itemType != models.TypeLost && itemType != models.TypeFound {
		return mcp.NewToolResultError("type must be lost or found"), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	city, err := req.RequireString("city")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item := &models.Item{
		Type:        itemType,
		Title:       title,
		Category:    category,
		Description: req.GetString("description", ""),
		Location: models.Location{
			City: city,
			Area: req.GetString("area", ""),
		},
		Email: email,
	}
	if err := s.items.CreateItem(item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notified, _ := s.engine.OnItemCreated(ctx, item)

	out, _ := json.MarshalIndent(map[string]any{
		"item":             item,
		"matches_notified": notified,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
