package controller

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/Scalingo/github-profile-mcp/model"
)

const (
	ToolGetRepositories         = "get_repositories"
	ToolGetRepositoryDetails    = "get_repository_details"
	ToolGetRecentCommits        = "get_recent_commits"
	ToolGetRepositoryStats      = "get_repository_stats"
	ToolGetContributionActivity = "get_contribution_activity"
	ToolGetContributionCalendar = "get_contribution_calendar"
	ToolSearchRepositories      = "search_repositories"
	ToolGetSkillsMatrix         = "get_skills_matrix"
	ToolGetPortfolioSummary     = "get_portfolio_summary"
	ToolGetRateLimit            = "get_rate_limit"
	ToolClearCache              = "clear_cache"
)

type ArgumentType string

const (
	ArgumentString  ArgumentType = "string"
	ArgumentNumber  ArgumentType = "number"
	ArgumentBoolean ArgumentType = "boolean"
)

// Argument describes one accepted key of a tool argument object
type Argument struct {
	Name        string       `json:"name"`
	Type        ArgumentType `json:"type"`
	Description string       `json:"description"`
	Required    bool         `json:"required,omitempty"`
	Default     any          `json:"default,omitempty"`
	Enum        []string     `json:"enum,omitempty"`
}

// ToolDefinition is shared by the MCP server and the HTTP mirror
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Arguments   []Argument `json:"arguments"`
}

var (
	useCacheArgument = Argument{
		Name:        "use_cache",
		Type:        ArgumentBoolean,
		Description: "Serve the result from the cache when available",
		Default:     true,
	}
	sortByArgument = Argument{
		Name:        "sort_by",
		Type:        ArgumentString,
		Description: "Sort the repositories by this field, fetch order when omitted",
		Enum:        model.SortKeys,
	}
	orderArgument = Argument{
		Name:        "order",
		Type:        ArgumentString,
		Description: "Sort direction",
		Default:     string(model.OrderDesc),
		Enum:        []string{string(model.OrderAsc), string(model.OrderDesc)},
	}
	limitArgument = Argument{
		Name:        "limit",
		Type:        ArgumentNumber,
		Description: "Maximum number of repositories returned",
	}
	repositoryNameArgument = Argument{
		Name:        "repository_name",
		Type:        ArgumentString,
		Description: "Name of a repository owned by the profile",
	}
)

// Definitions lists every tool in the order they are advertised
func Definitions() []ToolDefinition {
	requiredRepository := repositoryNameArgument
	requiredRepository.Required = true

	return []ToolDefinition{
		{
			Name:        ToolGetRepositories,
			Description: "List all public repositories of the GitHub profile",
			Arguments:   []Argument{useCacheArgument, sortByArgument, orderArgument, limitArgument},
		},
		{
			Name:        ToolGetRepositoryDetails,
			Description: "Get the details of one repository, optionally with its README",
			Arguments: []Argument{
				requiredRepository,
				{Name: "include_readme", Type: ArgumentBoolean, Description: "Include the decoded README content", Default: false},
				useCacheArgument,
			},
		},
		{
			Name:        ToolGetRecentCommits,
			Description: "Get recent commits of the profile owner, in one repository or across the most recent ones",
			Arguments: []Argument{
				repositoryNameArgument,
				{Name: "limit", Type: ArgumentNumber, Description: "Maximum number of commits returned", Default: 50},
				useCacheArgument,
			},
		},
		{
			Name:        ToolGetRepositoryStats,
			Description: "Aggregate statistics: totals, language breakdown, most starred and forked repositories",
			Arguments:   []Argument{useCacheArgument},
		},
		{
			Name:        ToolGetContributionActivity,
			Description: "Contribution activity derived from a sample of recent commits",
			Arguments:   []Argument{useCacheArgument},
		},
		{
			Name:        ToolGetContributionCalendar,
			Description: "Contribution calendar of the last year, including contributions to other repositories",
			Arguments:   []Argument{useCacheArgument},
		},
		{
			Name:        ToolSearchRepositories,
			Description: "Filter repositories by language, topic and stars",
			Arguments: []Argument{
				{Name: "language", Type: ArgumentString, Description: "Primary language, case-insensitive exact match"},
				{Name: "topic", Type: ArgumentString, Description: "Matches repositories with a topic containing this text"},
				{Name: "min_stars", Type: ArgumentNumber, Description: "Minimum number of stars, inclusive"},
				sortByArgument,
				orderArgument,
				limitArgument,
				useCacheArgument,
			},
		},
		{
			Name:        ToolGetSkillsMatrix,
			Description: "Languages with proficiency, domains of expertise and topics",
			Arguments:   []Argument{useCacheArgument},
		},
		{
			Name:        ToolGetPortfolioSummary,
			Description: "Narrative portfolio summary with featured projects",
			Arguments:   []Argument{useCacheArgument},
		},
		{
			Name:        ToolGetRateLimit,
			Description: "Current GitHub API rate limit status",
			Arguments:   []Argument{},
		},
		{
			Name:        ToolClearCache,
			Description: "Drop every cached GitHub response",
			Arguments:   []Argument{},
		},
	}
}

// arguments wraps a decoded JSON object. Numbers arrive as float64.
type arguments map[string]any

func (a arguments) String(name string) (string, error) {
	value, found := a[name]
	if !found || value == nil {
		return "", nil
	}

	s, ok := value.(string)
	if !ok {
		return "", model.InvalidArgument("%s must be a string, got %T", name, value)
	}

	return s, nil
}

func (a arguments) RequiredString(name string) (string, error) {
	s, err := a.String(name)
	if err != nil {
		return "", err
	}

	if s == "" {
		return "", model.InvalidArgument("%s is required", name)
	}

	return s, nil
}

func (a arguments) Bool(name string, fallback bool) (bool, error) {
	value, found := a[name]
	if !found || value == nil {
		return fallback, nil
	}

	b, ok := value.(bool)
	if !ok {
		return false, model.InvalidArgument("%s must be a boolean, got %T", name, value)
	}

	return b, nil
}

func (a arguments) Int(name string, fallback int) (int, error) {
	value, found := a[name]
	if !found || value == nil {
		return fallback, nil
	}

	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, model.InvalidArgument("%s must be an integer, got %v", name, n)
		}
		return int(n), nil
	case json.Number:
		parsed, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, model.InvalidArgument("%s must be an integer, got %s", name, n)
		}
		return parsed, nil
	}

	return 0, model.InvalidArgument("%s must be a number, got %T", name, value)
}

// query reads the filter and sort arguments shared by the listing tools
func (a arguments) query(withFilters bool) (model.RepositoryQuery, error) {
	var q model.RepositoryQuery
	var err error

	if withFilters {
		if q.Language, err = a.String("language"); err != nil {
			return q, err
		}
		if q.Topic, err = a.String("topic"); err != nil {
			return q, err
		}
		if q.MinStars, err = a.Int("min_stars", 0); err != nil {
			return q, err
		}
	}

	sortBy, err := a.String("sort_by")
	if err != nil {
		return q, err
	}
	q.SortBy = model.SortKey(sortBy)

	order, err := a.String("order")
	if err != nil {
		return q, err
	}
	q.Order = model.SortOrder(order)

	if q.Limit, err = a.Int("limit", 0); err != nil {
		return q, err
	}

	return q, q.Validate()
}
