package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Scalingo/github-profile-mcp/cache"
	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type githubServiceMock struct {
	mock.Mock
}

func (m *githubServiceMock) Username() string {
	return "octocat"
}

func (m *githubServiceMock) ListRepositories(ctx context.Context, useCache bool) ([]model.Repository, error) {
	args := m.Called(ctx, useCache)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}

func (m *githubServiceMock) GetRepositoryDetails(ctx context.Context, name string, useCache bool) (model.Repository, error) {
	args := m.Called(ctx, name, useCache)
	return args.Get(0).(model.Repository), args.Error(1)
}

func (m *githubServiceMock) GetRepositoryReadme(ctx context.Context, name string, useCache bool) (string, error) {
	args := m.Called(ctx, name, useCache)
	return args.String(0), args.Error(1)
}

func (m *githubServiceMock) GetRecentCommits(ctx context.Context, repoName string, limit int, useCache bool) ([]model.Commit, error) {
	args := m.Called(ctx, repoName, limit, useCache)
	commits, _ := args.Get(0).([]model.Commit)
	return commits, args.Error(1)
}

func (m *githubServiceMock) GetRepositoryStats(ctx context.Context, useCache bool) (model.StatsSnapshot, error) {
	args := m.Called(ctx, useCache)
	return args.Get(0).(model.StatsSnapshot), args.Error(1)
}

func (m *githubServiceMock) GetContributionActivity(ctx context.Context, useCache bool) (model.ActivitySnapshot, error) {
	args := m.Called(ctx, useCache)
	return args.Get(0).(model.ActivitySnapshot), args.Error(1)
}

func (m *githubServiceMock) GetContributionCalendar(ctx context.Context, useCache bool) (model.ContributionCalendar, error) {
	args := m.Called(ctx, useCache)
	return args.Get(0).(model.ContributionCalendar), args.Error(1)
}

func (m *githubServiceMock) GetRateLimit(ctx context.Context) (model.RateLimitStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.RateLimitStatus), args.Error(1)
}

var testRepositories = []model.Repository{
	{Name: "api", Stars: 10, Forks: 2, Language: github.String("Go"), Topics: []string{"microservices", "grpc"}},
	{Name: "site", Stars: 3, Language: github.String("TypeScript"), Topics: []string{"react"}},
	{Name: "dotfiles", Stars: 0},
	{Name: "cli", Stars: 7, Language: github.String("go"), Topics: []string{"cli"}},
}

func newTestToolController(t *testing.T, svc *githubServiceMock) (ToolController, *cache.Store) {
	t.Helper()

	conf := config.GetDefault()
	conf.Portfolio.PinnedProjects = []config.PinnedProject{{Name: "github-profile-mcp", Description: "this server", URL: "https://example.com"}}

	store := cache.New(time.Minute, time.Minute)
	return NewToolController(*conf, svc, store), store
}

func TestCallUnknownTool(t *testing.T) {
	controller, _ := newTestToolController(t, &githubServiceMock{})

	envelope := controller.Call(context.Background(), "delete_everything", nil)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNKNOWN_TOOL", envelope.Error.Code)
	assert.Equal(t, "unknown tool: delete_everything", envelope.Error.Message)
	assert.NotEmpty(t, envelope.Timestamp)
}

func TestCallGetRepositories(t *testing.T) {
	tests := []struct {
		name          string
		args          map[string]any
		expectedCache bool
		expectedNames []string
		expectedCode  string
	}{
		{
			name:          "Defaults keep fetch order and use the cache",
			args:          nil,
			expectedCache: true,
			expectedNames: []string{"api", "site", "dotfiles", "cli"},
		},
		{
			name:          "Sorted by stars ascending with limit",
			args:          map[string]any{"sort_by": "stars", "order": "asc", "limit": float64(2), "use_cache": false},
			expectedCache: false,
			expectedNames: []string{"dotfiles", "site"},
		},
		{
			name:         "Unknown sort key",
			args:         map[string]any{"sort_by": "popularity"},
			expectedCode: "INVALID_ARGUMENT",
		},
		{
			name:         "Limit must be an integer",
			args:         map[string]any{"limit": 2.5},
			expectedCode: "INVALID_ARGUMENT",
		},
		{
			name:         "use_cache must be a boolean",
			args:         map[string]any{"use_cache": "yes"},
			expectedCode: "INVALID_ARGUMENT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &githubServiceMock{}
			svc.On("ListRepositories", mock.Anything, tt.expectedCache).Return(testRepositories, nil).Maybe()
			controller, _ := newTestToolController(t, svc)

			envelope := controller.Call(context.Background(), ToolGetRepositories, tt.args)

			if tt.expectedCode != "" {
				assert.False(t, envelope.Success)
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.expectedCode, envelope.Error.Code)
				svc.AssertNotCalled(t, "ListRepositories", mock.Anything, mock.Anything)
				return
			}

			require.True(t, envelope.Success)
			assert.Equal(t, tt.expectedCache, envelope.Cached)

			repos, ok := envelope.Data.([]model.Repository)
			require.True(t, ok)
			names := make([]string, 0, len(repos))
			for _, r := range repos {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestCallSearchRepositories(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("ListRepositories", mock.Anything, true).Return(testRepositories, nil)
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolSearchRepositories, map[string]any{
		"language":  "GO",
		"min_stars": float64(5),
		"sort_by":   "name",
		"order":     "asc",
	})

	require.True(t, envelope.Success)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, data["totalMatches"])

	repos := data["repositories"].([]model.Repository)
	require.Len(t, repos, 2)
	assert.Equal(t, "api", repos[0].Name)
	assert.Equal(t, "cli", repos[1].Name)
}

func TestCallGetRepositoryDetails(t *testing.T) {
	t.Run("Repository name is required", func(t *testing.T) {
		svc := &githubServiceMock{}
		controller, _ := newTestToolController(t, svc)

		envelope := controller.Call(context.Background(), ToolGetRepositoryDetails, map[string]any{})

		require.NotNil(t, envelope.Error)
		assert.Equal(t, "INVALID_ARGUMENT", envelope.Error.Code)
		assert.Equal(t, "repository_name is required", envelope.Error.Message)
	})

	t.Run("Readme is attached on demand", func(t *testing.T) {
		svc := &githubServiceMock{}
		svc.On("GetRepositoryDetails", mock.Anything, "api", true).Return(testRepositories[0], nil)
		svc.On("GetRepositoryReadme", mock.Anything, "api", true).Return("# API", nil)
		controller, _ := newTestToolController(t, svc)

		envelope := controller.Call(context.Background(), ToolGetRepositoryDetails, map[string]any{
			"repository_name": "api",
			"include_readme":  true,
		})

		require.True(t, envelope.Success)
		repo := envelope.Data.(model.Repository)
		require.NotNil(t, repo.Readme)
		assert.Equal(t, "# API", *repo.Readme)
		assert.Nil(t, testRepositories[0].Readme)
	})

	t.Run("Not found is reported", func(t *testing.T) {
		svc := &githubServiceMock{}
		svc.On("GetRepositoryDetails", mock.Anything, "missing", true).
			Return(model.Repository{}, model.NewUpstreamError(model.KindNotFound, 404, errors.New("Not Found")))
		controller, _ := newTestToolController(t, svc)

		envelope := controller.Call(context.Background(), ToolGetRepositoryDetails, map[string]any{"repository_name": "missing"})

		assert.False(t, envelope.Success)
		assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
		svc.AssertNotCalled(t, "GetRepositoryReadme", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCallGetRecentCommits(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("GetRecentCommits", mock.Anything, "", 50, true).Return([]model.Commit{{SHA: "abc"}}, nil)
	svc.On("GetRecentCommits", mock.Anything, "api", 3, false).Return([]model.Commit{}, nil)
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetRecentCommits, nil)
	require.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 1)

	envelope = controller.Call(context.Background(), ToolGetRecentCommits, map[string]any{
		"repository_name": "api",
		"limit":           float64(3),
		"use_cache":       false,
	})
	require.True(t, envelope.Success)
	assert.False(t, envelope.Cached)

	envelope = controller.Call(context.Background(), ToolGetRecentCommits, map[string]any{"limit": float64(0)})
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_ARGUMENT", envelope.Error.Code)

	svc.AssertExpectations(t)
}

func TestCallRateLimitError(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("GetRepositoryStats", mock.Anything, true).
		Return(model.StatsSnapshot{}, model.NewUpstreamError(model.KindRateLimit, 403, errors.New("API rate limit exceeded")))
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetRepositoryStats, nil)

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "use_cache")
}

func TestCallGetSkillsMatrix(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("ListRepositories", mock.Anything, true).Return(testRepositories, nil)
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetSkillsMatrix, nil)

	require.True(t, envelope.Success)
	matrix := envelope.Data.(model.SkillsMatrix)
	require.NotEmpty(t, matrix.Languages)
	assert.Equal(t, "Go", matrix.Languages[0].Language)
}

func TestCallGetPortfolioSummary(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("ListRepositories", mock.Anything, true).Return(testRepositories, nil)
	svc.On("GetRepositoryStats", mock.Anything, true).Return(model.StatsSnapshot{TotalRepositories: 4, TotalStars: 20}, nil)
	svc.On("GetContributionActivity", mock.Anything, true).Return(model.ActivitySnapshot{MostActiveDay: model.NotApplicable}, nil)
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetPortfolioSummary, nil)

	require.True(t, envelope.Success)
	portfolio := envelope.Data.(model.PortfolioSummary)
	assert.Equal(t, "octocat", portfolio.Username)

	names := make([]string, 0)
	for _, p := range portfolio.FeaturedProjects {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"github-profile-mcp", "api", "cli", "site"}, names)
	assert.True(t, portfolio.FeaturedProjects[0].Pinned)
}

func TestCallGetRateLimitIsNeverCached(t *testing.T) {
	svc := &githubServiceMock{}
	svc.On("GetRateLimit", mock.Anything).Return(model.RateLimitStatus{Core: model.RateBucket{Limit: 5000}}, nil)
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetRateLimit, map[string]any{"use_cache": true})

	require.True(t, envelope.Success)
	assert.False(t, envelope.Cached)
}

func TestCallClearCache(t *testing.T) {
	controller, store := newTestToolController(t, &githubServiceMock{})
	store.Set("repos:octocat", testRepositories)
	store.Set("stats:octocat", model.StatsSnapshot{})

	envelope := controller.Call(context.Background(), ToolClearCache, nil)

	require.True(t, envelope.Success)
	assert.Equal(t, map[string]int{"clearedEntries": 2}, envelope.Data)
	assert.Equal(t, 0, store.Len())
}

func TestCallRecoversPanics(t *testing.T) {
	svc := &githubServiceMock{}
	// no expectation registered: testify panics on the unexpected call
	controller, _ := newTestToolController(t, svc)

	envelope := controller.Call(context.Background(), ToolGetContributionCalendar, nil)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FETCH_ERROR", envelope.Error.Code)
}

func TestDefinitionsCoverHandlers(t *testing.T) {
	controller, _ := newTestToolController(t, &githubServiceMock{})
	handlers := controller.(*toolController).handlers

	definitions := controller.Tools()
	assert.Len(t, definitions, len(handlers))
	for _, d := range definitions {
		assert.Contains(t, handlers, d.Name)
	}
}
