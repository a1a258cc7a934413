// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jobtrail tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/parser"
	"github.com/starford/jobtrail/internal/snapshot"
	"github.com/starford/jobtrail/internal/tracker"
	"github.com/starford/jobtrail/internal/view"
)

const clippingFormatURI = "jobtrail://clipping-format"

// Server wraps the MCP server with Jobtrail tools.
type Server struct {
	mcp  *server.MCPServer
	ctrl *tracker.Controller
}

// New creates a new MCP server with all Jobtrail tools registered.
func New(ctrl *tracker.Controller) *Server {
	s := &Server{ctrl: ctrl}

	s.mcp = server.NewMCPServer(
		"Jobtrail",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List tracked job applications, newest first unless a sort is given."),
		mcp.WithString("query", mcp.Description("Optional free-text filter over title, company, contact, email and notes")),
		mcp.WithString("status", mcp.Description("Optional status filter: Saved, Applied, Interview, Offer, Rejected, Withdrawn or All")),
		mcp.WithString("sort", mcp.Description("Optional sort: newest, oldest or followupSoon")),
	), s.listJobs)

	s.mcp.AddTool(mcp.NewTool("get_job",
		mcp.WithDescription("Read one job application by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Job id")),
	), s.getJob)

	s.mcp.AddTool(mcp.NewTool("todays_actions",
		mcp.WithDescription("Follow-ups due today or earlier, Applied jobs that went stale, and whether the profile checklist is overdue."),
	), s.todaysActions)

	s.mcp.AddTool(mcp.NewTool("create_job",
		mcp.WithDescription("Track a new job application."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Role title")),
		mcp.WithString("company", mcp.Required(), mcp.Description("Company name")),
		mcp.WithString("status", mcp.Description("Saved, Applied, Interview, Offer, Rejected or Withdrawn (default Saved)")),
		mcp.WithString("url", mcp.Description("Job posting URL")),
		mcp.WithString("contactName", mcp.Description("Recruiter or hiring manager name")),
		mcp.WithString("posterEmail", mcp.Description("Contact email address")),
		mcp.WithString("posterMobile", mcp.Description("Contact phone number")),
		mcp.WithString("appliedDate", mcp.Description("YYYY-MM-DD, defaults to today")),
		mcp.WithString("followUpDate", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	), s.createJob)

	s.mcp.AddTool(mcp.NewTool("add_clipping",
		mcp.WithDescription("Create a job from a Markdown clipping of a job posting. "+
			"Read the clipping format via the get_clipping_format tool or the "+clippingFormatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown clipping with optional YAML frontmatter")),
	), s.addClipping)

	s.mcp.AddTool(mcp.NewTool("get_clipping_format",
		mcp.WithDescription("Returns the Markdown clipping format accepted by add_clipping."),
	), s.getClippingFormat)

	s.mcp.AddTool(mcp.NewTool("set_status",
		mcp.WithDescription("Move a job to a new status."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Job id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Saved, Applied, Interview, Offer, Rejected or Withdrawn")),
	), s.setStatus)

	s.mcp.AddTool(mcp.NewTool("bump_follow_up",
		mcp.WithDescription("Push a job's follow-up date a week past today."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Job id")),
	), s.bumpFollowUp)

	s.mcp.AddTool(mcp.NewTool("export_snapshot",
		mcp.WithDescription("Export jobs, checklist and profile as a JSON snapshot."),
	), s.exportSnapshot)

	s.mcp.AddTool(mcp.NewTool("upload_attachment",
		mcp.WithDescription("Store a resume or cover letter from a base64 data URI or an http(s) URL, optionally linking it to a job."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:<mime>;base64,<data> or http(s) URL")),
		mcp.WithString("filename", mcp.Description("Optional file name (e.g. resume.pdf)")),
		mcp.WithString("name", mcp.Description("Optional display name")),
		mcp.WithString("jobId", mcp.Description("Optional job to link the attachment to")),
	), s.uploadAttachment)

	s.mcp.AddResource(
		mcp.NewResource(clippingFormatURI, "Clipping Format",
			mcp.WithResourceDescription("Markdown format for job posting clippings."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readClippingFormatResource,
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

func optional(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func (s *Server) listJobs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sort := models.SortKey(optional(req, "sort"))
	if sort != "" && !sort.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown sort: %s", sort)), nil
	}
	q := view.Refine(models.DefaultQuery(), optional(req, "query"), optional(req, "status"), sort)
	return jsonResult(s.ctrl.ViewOf(q))
}

func (s *Server) getJob(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	j, ok := s.ctrl.Job(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(j)
}

func (s *Server) todaysActions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.ctrl.Actions())
}

func (s *Server) createJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	company, err := req.RequireString("company")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	j, err := s.ctrl.Create(ctx, tracker.JobFields{
		Title:        title,
		Company:      company,
		Status:       models.Status(optional(req, "status")),
		URL:          optional(req, "url"),
		ContactName:  optional(req, "contactName"),
		PosterEmail:  optional(req, "posterEmail"),
		PosterMobile: optional(req, "posterMobile"),
		AppliedDate:  optional(req, "appliedDate"),
		FollowUpDate: optional(req, "followUpDate"),
		Notes:        optional(req, "notes"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(j)
}

func (s *Server) addClipping(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := parser.Parse([]byte(content))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid clipping: %v", err)), nil
	}
	raw := res.Record()
	if t, _ := raw["title"].(string); t == "" {
		return mcp.NewToolResultError("clipping has no title"), nil
	}
	j, err := s.ctrl.AddClipping(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(j)
}

func (s *Server) setStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.dispatchJob(ctx, id, tracker.SetStatus{ID: id, Status: models.Status(status)})
}

func (s *Server) bumpFollowUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.dispatchJob(ctx, id, tracker.BumpFollowUp{ID: id})
}

func (s *Server) dispatchJob(ctx context.Context, id string, cmd tracker.Command) (*mcp.CallToolResult, error) {
	if err := s.ctrl.Dispatch(ctx, cmd); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	j, ok := s.ctrl.Job(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(j)
}

func (s *Server) exportSnapshot(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := snapshot.Encode(s.ctrl.Export())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getClippingFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ClippingFormat), nil
}

func (s *Server) readClippingFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      clippingFormatURI,
			MIMEType: "text/markdown",
			Text:     ClippingFormat,
		},
	}, nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrAttachmentsUnavailable) {
		return mcp.NewToolResultError("attachment storage is not configured")
	}
	return mcp.NewToolResultError(err.Error())
}
