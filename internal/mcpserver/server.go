// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Moldavite notes for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/noteservice"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

const formatURI = "moldavite://note-format"

// Server wraps the MCP server with Moldavite tools.
type Server struct {
	mcp   *server.MCPServer
	notes *noteservice.Service
	store storage.Provider
}

// New creates a new MCP server with all tools registered.
func New(notes *noteservice.Service, store storage.Provider) *Server {
	s := &Server{notes: notes, store: store}

	s.mcp = server.NewMCPServer(
		"Moldavite",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note: its Markdown, task counts, links and backlinks."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault path, e.g. daily/2024-01-15.md or notes/Project Alpha.md")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List indexed notes, optionally of one kind."),
		mcp.WithString("kind", mcp.Description("daily, weekly or standalone (empty for all)")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("find_notes",
		mcp.WithDescription("Fuzzy match note titles, as a quick switcher would."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Characters of the title in order")),
	), s.findNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find the notes that link to a note, with the text around each link."),
		mcp.WithString("note", mcp.Required(), mcp.Description("File name of the target note, e.g. Project Alpha.md")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_task_status",
		mcp.WithDescription("Task counts of daily notes: one date, or every date in a range."),
		mcp.WithString("date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Optional inclusive end date of a range")),
	), s.getTaskStatus)

	s.mcp.AddTool(mcp.NewTool("convert_markdown",
		mcp.WithDescription("Convert between stored Markdown and editor HTML."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Text to convert")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("decode", "encode"),
			mcp.Description("decode: Markdown to HTML, encode: HTML to Markdown")),
	), s.convertMarkdown)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Store an image in attachments/ from a data URI or http(s) URL. "+
			"Returns the <img> tag to paste into a note."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:image/...;base64,... or http(s) URL")),
		mcp.WithString("filename", mcp.Description("Optional file name")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Moldavite note format. "+
			"Read it before writing notes by hand."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("Stored Markdown dialect of Moldavite notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.GetNote(ctx, p)
	switch {
	case errors.Is(err, apperr.ErrAlreadyLocked):
		return mcp.NewToolResultError(fmt.Sprintf("note is locked: %s", p)), nil
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidFilename):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", p)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	note.HTML = ""
	return jsonResult(note)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.notes.ListNotes(ctx,
		req.GetString("kind", ""),
		req.GetInt("limit", 0),
		req.GetInt("offset", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"notes": items, "total": total})
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.notes.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) findNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := s.notes.Find(ctx, query, 10)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(matches)
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.notes.Backlinks(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return jsonResult(bl)
}

func (s *Server) getTaskStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to := req.GetString("to", "")
	for _, d := range []string{date, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", d)), nil
		}
	}
	if to != "" {
		days, err := s.notes.TaskCalendar(ctx, date, to)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(days)
	}
	st, ok, err := s.notes.TaskStatus(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultText("no task data for " + date), nil
	}
	return jsonResult(st)
}

func (s *Server) convertMarkdown(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch dir := req.GetString("direction", ""); dir {
	case "decode":
		return mcp.NewToolResultText(s.notes.Decode(input)), nil
	case "encode":
		return mcp.NewToolResultText(s.notes.Encode(input)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q", dir)), nil
	}
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
