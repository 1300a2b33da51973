// Package mcpserver exposes the tool facade, read-only resources and prompt
// templates over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Scalingo/github-profile-mcp/controller"
	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/Scalingo/github-profile-mcp/prompts"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

const (
	ServerName = "github-profile-mcp"

	ResourceRepositories = "github://profile/repositories"
	ResourceStats        = "github://profile/stats"
	ResourceSkills       = "github://profile/skills"
	ResourcePortfolio    = "github://profile/portfolio"
)

// Version is set at build time via ldflags
var Version = "dev"

type resourceDefinition struct {
	uri         string
	name        string
	description string
	tool        string
}

var resourceDefinitions = []resourceDefinition{
	{uri: ResourceRepositories, name: "Repositories", description: "All public repositories of the profile", tool: controller.ToolGetRepositories},
	{uri: ResourceStats, name: "Repository statistics", description: "Totals, language breakdown and most popular repositories", tool: controller.ToolGetRepositoryStats},
	{uri: ResourceSkills, name: "Skills matrix", description: "Languages, domains and topics of the profile", tool: controller.ToolGetSkillsMatrix},
	{uri: ResourcePortfolio, name: "Portfolio summary", description: "Narrative summary with featured projects", tool: controller.ToolGetPortfolioSummary},
}

// Server owns the MCP server and the handlers registered on it
type Server struct {
	mcpServer      *server.MCPServer
	toolController controller.ToolController
	prompts        *prompts.Library
	username       string
}

func New(toolController controller.ToolController, library *prompts.Library, username string) *Server {
	s := &Server{
		toolController: toolController,
		prompts:        library,
		username:       username,
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	for _, definition := range toolController.Tools() {
		s.mcpServer.AddTool(NewTool(definition), s.handleTool(definition.Name))
	}

	for _, definition := range resourceDefinitions {
		resource := mcp.NewResource(
			definition.uri,
			definition.name,
			mcp.WithResourceDescription(definition.description),
			mcp.WithMIMEType("application/json"),
		)
		s.mcpServer.AddResource(resource, s.handleResource(definition))
	}

	for _, p := range library.List() {
		s.mcpServer.AddPrompt(NewPrompt(p), s.handlePrompt(p.Name))
	}

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks until stdin is closed or the process is interrupted
func (s *Server) ServeStdio() error {
	log.WithField("username", s.username).Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcpServer)
}

// NewTool converts a facade tool definition into its MCP schema
func NewTool(definition controller.ToolDefinition) mcp.Tool {
	options := []mcp.ToolOption{
		mcp.WithDescription(definition.Description),
		mcp.WithReadOnlyHintAnnotation(definition.Name != controller.ToolClearCache),
	}

	for _, arg := range definition.Arguments {
		properties := []mcp.PropertyOption{mcp.Description(arg.Description)}
		if arg.Required {
			properties = append(properties, mcp.Required())
		}

		switch arg.Type {
		case controller.ArgumentString:
			if len(arg.Enum) > 0 {
				properties = append(properties, mcp.Enum(arg.Enum...))
			}
			if value, ok := arg.Default.(string); ok {
				properties = append(properties, mcp.DefaultString(value))
			}
			options = append(options, mcp.WithString(arg.Name, properties...))

		case controller.ArgumentNumber:
			if value, ok := arg.Default.(int); ok {
				properties = append(properties, mcp.DefaultNumber(float64(value)))
			}
			options = append(options, mcp.WithNumber(arg.Name, properties...))

		case controller.ArgumentBoolean:
			if value, ok := arg.Default.(bool); ok {
				properties = append(properties, mcp.DefaultBool(value))
			}
			options = append(options, mcp.WithBoolean(arg.Name, properties...))
		}
	}

	return mcp.NewTool(definition.Name, options...)
}

// NewPrompt converts a prompt template into its MCP declaration
func NewPrompt(p prompts.Prompt) mcp.Prompt {
	options := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}

	for _, arg := range p.Arguments {
		argOptions := []mcp.ArgumentOption{mcp.ArgumentDescription(arg.Description)}
		if arg.Required {
			argOptions = append(argOptions, mcp.RequiredArgument())
		}
		options = append(options, mcp.WithArgument(arg.Name, argOptions...))
	}

	return mcp.NewPrompt(p.Name, options...)
}

// handleTool returns the envelope as JSON text. Failed calls are tool errors,
// not protocol errors, so the client still receives the envelope.
func (s *Server) handleTool(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		envelope := s.toolController.Call(ctx, name, request.GetArguments())

		text, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("unable to encode %s result: %w", name, err)
		}

		if !envelope.Success {
			return mcp.NewToolResultError(string(text)), nil
		}

		return mcp.NewToolResultText(string(text)), nil
	}
}

func (s *Server) handleResource(definition resourceDefinition) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		envelope := s.toolController.Call(ctx, definition.tool, nil)
		if !envelope.Success {
			return nil, fmt.Errorf("unable to read %s: %s", definition.uri, envelope.Error.Message)
		}

		text, err := json.MarshalIndent(envelope.Data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("unable to encode %s: %w", definition.uri, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      definition.uri,
				MIMEType: "application/json",
				Text:     string(text),
			},
		}, nil
	}
}

func (s *Server) handlePrompt(name string) server.PromptHandlerFunc {
	return func(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := s.prompts.Render(name, s.username, request.Params.Arguments)
		if err != nil {
			return nil, model.InvalidArgument("%v", err)
		}

		var description string
		for _, p := range s.prompts.List() {
			if p.Name == name {
				description = p.Description
			}
		}

		return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}
