package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Scalingo/github-profile-mcp/analytics"
	"github.com/Scalingo/github-profile-mcp/cache"
	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/Scalingo/github-profile-mcp/service"
	log "github.com/sirupsen/logrus"
)

// ToolController maps a tool name and its argument object to the fetcher and
// analytics, and wraps every outcome in an envelope. It never returns an error.
type ToolController interface {
	Call(ctx context.Context, name string, args map[string]any) model.Envelope
	Tools() []ToolDefinition
}

type toolHandler func(ctx context.Context, args arguments, useCache bool) (any, error)

type toolController struct {
	githubService service.GithubService
	cache         *cache.Store
	config        config.Config
	handlers      map[string]toolHandler
	now           func() time.Time
}

func NewToolController(config config.Config, githubService service.GithubService, store *cache.Store) ToolController {
	c := &toolController{
		githubService: githubService,
		cache:         store,
		config:        config,
		now:           time.Now,
	}

	c.handlers = map[string]toolHandler{
		ToolGetRepositories:         c.getRepositories,
		ToolGetRepositoryDetails:    c.getRepositoryDetails,
		ToolGetRecentCommits:        c.getRecentCommits,
		ToolGetRepositoryStats:      c.getRepositoryStats,
		ToolGetContributionActivity: c.getContributionActivity,
		ToolGetContributionCalendar: c.getContributionCalendar,
		ToolSearchRepositories:      c.searchRepositories,
		ToolGetSkillsMatrix:         c.getSkillsMatrix,
		ToolGetPortfolioSummary:     c.getPortfolioSummary,
		ToolGetRateLimit:            c.getRateLimit,
		ToolClearCache:              c.clearCache,
	}

	return c
}

func (c *toolController) Tools() []ToolDefinition {
	return Definitions()
}

func (c *toolController) Call(ctx context.Context, name string, args map[string]any) (envelope model.Envelope) {
	start := c.now()
	logger := log.WithField("tool", name)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("tool handler panicked")
			envelope = model.NewFailureEnvelope(fmt.Errorf("internal error in %s: %v", name, r), c.now())
		}
	}()

	handler, found := c.handlers[name]
	if !found {
		logger.Warning("unknown tool requested")
		return model.NewFailureEnvelope(model.NewUpstreamError(model.KindUnknownTool, 0, fmt.Errorf("unknown tool: %s", name)), c.now())
	}

	if args == nil {
		args = map[string]any{}
	}

	useCache, err := arguments(args).Bool("use_cache", true)
	if err != nil {
		return model.NewFailureEnvelope(err, c.now())
	}

	data, err := handler(ctx, arguments(args), useCache)
	logger = logger.WithFields(log.Fields{
		"useCache": useCache,
		"duration": c.now().Sub(start).String(),
	})

	if err != nil {
		logger.WithError(err).Info("tool call failed")
		return model.NewFailureEnvelope(err, c.now())
	}

	logger.Debug("tool call succeeded")
	return model.NewSuccessEnvelope(data, useCache && name != ToolGetRateLimit && name != ToolClearCache, c.now())
}

func (c *toolController) getRepositories(ctx context.Context, args arguments, useCache bool) (any, error) {
	query, err := args.query(false)
	if err != nil {
		return nil, err
	}

	repos, err := c.githubService.ListRepositories(ctx, useCache)
	if err != nil {
		return nil, err
	}

	return query.Apply(repos), nil
}

func (c *toolController) searchRepositories(ctx context.Context, args arguments, useCache bool) (any, error) {
	query, err := args.query(true)
	if err != nil {
		return nil, err
	}

	repos, err := c.githubService.ListRepositories(ctx, useCache)
	if err != nil {
		return nil, err
	}

	results := query.Apply(repos)

	return map[string]any{
		"query":        query,
		"totalMatches": len(results),
		"repositories": results,
	}, nil
}

func (c *toolController) getRepositoryDetails(ctx context.Context, args arguments, useCache bool) (any, error) {
	name, err := args.RequiredString("repository_name")
	if err != nil {
		return nil, err
	}

	includeReadme, err := args.Bool("include_readme", false)
	if err != nil {
		return nil, err
	}

	repository, err := c.githubService.GetRepositoryDetails(ctx, name, useCache)
	if err != nil {
		return nil, err
	}

	if includeReadme {
		readme, err := c.githubService.GetRepositoryReadme(ctx, name, useCache)
		if err != nil {
			return nil, err
		}
		repository.Readme = &readme
	}

	return repository, nil
}

func (c *toolController) getRecentCommits(ctx context.Context, args arguments, useCache bool) (any, error) {
	name, err := args.String("repository_name")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", service.DefaultCommitLimit)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		return nil, model.InvalidArgument("limit must be positive, got %d", limit)
	}

	return c.githubService.GetRecentCommits(ctx, name, limit, useCache)
}

func (c *toolController) getRepositoryStats(ctx context.Context, _ arguments, useCache bool) (any, error) {
	return c.githubService.GetRepositoryStats(ctx, useCache)
}

func (c *toolController) getContributionActivity(ctx context.Context, _ arguments, useCache bool) (any, error) {
	return c.githubService.GetContributionActivity(ctx, useCache)
}

func (c *toolController) getContributionCalendar(ctx context.Context, _ arguments, useCache bool) (any, error) {
	return c.githubService.GetContributionCalendar(ctx, useCache)
}

func (c *toolController) getSkillsMatrix(ctx context.Context, _ arguments, useCache bool) (any, error) {
	repos, err := c.githubService.ListRepositories(ctx, useCache)
	if err != nil {
		return nil, err
	}

	return analytics.BuildSkillsMatrix(repos), nil
}

func (c *toolController) getPortfolioSummary(ctx context.Context, _ arguments, useCache bool) (any, error) {
	repos, err := c.githubService.ListRepositories(ctx, useCache)
	if err != nil {
		return nil, err
	}

	snapshot, err := c.githubService.GetRepositoryStats(ctx, useCache)
	if err != nil {
		return nil, err
	}

	activity, err := c.githubService.GetContributionActivity(ctx, useCache)
	if err != nil {
		return nil, err
	}

	return analytics.BuildPortfolio(c.githubService.Username(), repos, snapshot, activity, c.pinnedProjects()), nil
}

func (c *toolController) pinnedProjects() []model.FeaturedProject {
	pinned := make([]model.FeaturedProject, 0, len(c.config.Portfolio.PinnedProjects))
	for _, p := range c.config.Portfolio.PinnedProjects {
		pinned = append(pinned, model.FeaturedProject{
			Name:        p.Name,
			Description: p.Description,
			URL:         p.URL,
		})
	}

	return pinned
}

func (c *toolController) getRateLimit(ctx context.Context, _ arguments, _ bool) (any, error) {
	return c.githubService.GetRateLimit(ctx)
}

func (c *toolController) clearCache(_ context.Context, _ arguments, _ bool) (any, error) {
	cleared := c.cache.Len()
	c.cache.Clear()

	log.WithField("entries", cleared).Info("cache cleared on request")

	return map[string]int{"clearedEntries": cleared}, nil
}
