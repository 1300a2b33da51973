package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Scalingo/github-profile-mcp/analytics"
	"github.com/Scalingo/github-profile-mcp/cache"
	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/google/go-github/v66/github"
	"github.com/remeh/sizedwaitgroup"
	"github.com/shurcooL/githubv4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// pageSize is the largest page GitHub serves, a shorter page is the last one
	pageSize = 100

	// ActivitySampleSize is how many commits the activity snapshot inspects
	ActivitySampleSize = 100

	DefaultCommitLimit = 50
)

type GithubService interface {
	Username() string
	ListRepositories(ctx context.Context, useCache bool) ([]model.Repository, error)
	GetRepositoryDetails(ctx context.Context, name string, useCache bool) (model.Repository, error)
	GetRepositoryReadme(ctx context.Context, name string, useCache bool) (string, error)
	GetRecentCommits(ctx context.Context, repoName string, limit int, useCache bool) ([]model.Commit, error)
	GetRepositoryStats(ctx context.Context, useCache bool) (model.StatsSnapshot, error)
	GetContributionActivity(ctx context.Context, useCache bool) (model.ActivitySnapshot, error)
	GetContributionCalendar(ctx context.Context, useCache bool) (model.ContributionCalendar, error)
	GetRateLimit(ctx context.Context) (model.RateLimitStatus, error)
}

type githubService struct {
	githubClient      *github.Client
	graphqlClient     *githubv4.Client
	githubRateLimiter *rate.Limiter
	cache             *cache.Store
	inflight          *singleflight.Group
	config            config.Config
}

// NewGithubService wires the fetcher. Clients and limiter are injected so
// tests can use mocked transports.
func NewGithubService(config config.Config, githubClient *github.Client, graphqlClient *githubv4.Client, rateLimiter *rate.Limiter, store *cache.Store) GithubService {
	return &githubService{
		githubClient:      githubClient,
		graphqlClient:     graphqlClient,
		githubRateLimiter: rateLimiter,
		cache:             store,
		inflight:          &singleflight.Group{},
		config:            config,
	}
}

func (s *githubService) Username() string {
	return s.config.Github.Username
}

// cached returns the value stored under key, or runs fetch and stores its result.
// Concurrent misses on the same key share a single fetch. The shared fetch
// outlives the cancellation of the caller that started it, a cancelled
// caller only stops waiting for it.
func cached[T any](ctx context.Context, s *githubService, key string, useCache bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	if useCache {
		if value, found := s.cache.Get(key); found {
			if typed, ok := value.(T); ok {
				return typed, nil
			}
		}
	}

	results := s.inflight.DoChan(key, func() (any, error) {
		fetched, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, fetched)
		return fetched, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, model.NewUpstreamError(model.KindFetch, 0, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return zero, result.Err
		}
		return result.Val.(T), nil
	}
}

// key scopes a cache key to the profile, e.g. commits:octocat:*:50
func (s *githubService) key(kind string, parts ...any) string {
	key := kind + ":" + s.config.Github.Username
	for _, part := range parts {
		key += fmt.Sprintf(":%v", part)
	}
	return key
}

func (s *githubService) repositoryKey(kind, name string) string {
	return kind + ":" + s.config.Github.Username + "/" + name
}

// ListRepositories fetches every repository owned by the profile, 100 per page
func (s *githubService) ListRepositories(ctx context.Context, useCache bool) ([]model.Repository, error) {
	return cached(ctx, s, s.key("repos"), useCache, func(ctx context.Context) ([]model.Repository, error) {
		username := s.config.Github.Username
		opts := &github.RepositoryListByUserOptions{
			Type: "owner",
			Sort: "updated",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: pageSize,
			},
		}

		repositories := make([]model.Repository, 0)

		for {
			if err := s.acquire(1); err != nil {
				return nil, err
			}

			log.WithFields(log.Fields{
				"username": username,
				"page":     opts.Page,
			}).Info("fetch repositories page from github")

			page, _, err := s.githubClient.Repositories.ListByUser(ctx, username, opts)
			if err != nil {
				return nil, s.HandleRequestErrors(err)
			}

			for _, r := range page {
				if r == nil || r.GetName() == "" {
					log.Debug("repository found with invalid information. skipped")
					continue
				}

				repositories = append(repositories, normalizeRepository(r))
			}

			if len(page) < pageSize {
				break
			}

			opts.Page++
		}

		return repositories, nil
	})
}

// GetRepositoryDetails fetches one repository and, best effort, its topics
func (s *githubService) GetRepositoryDetails(ctx context.Context, name string, useCache bool) (model.Repository, error) {
	return cached(ctx, s, s.repositoryKey("repo", name), useCache, func(ctx context.Context) (model.Repository, error) {
		username := s.config.Github.Username

		if err := s.acquire(2); err != nil {
			return model.Repository{}, err
		}

		log.WithFields(log.Fields{
			"username":   username,
			"repository": name,
		}).Info("fetch repository details from github")

		r, _, err := s.githubClient.Repositories.Get(ctx, username, name)
		if err != nil {
			return model.Repository{}, s.HandleRequestErrors(err)
		}

		repository := normalizeRepository(r)

		topics, _, err := s.githubClient.Repositories.ListAllTopics(ctx, username, name)
		if err != nil {
			log.WithError(err).WithField("repository", name).Warning("unable to fetch repository topics, using an empty list")
			repository.Topics = []string{}
		} else {
			repository.Topics = model.UniqueTopics(topics)
		}

		return repository, nil
	})
}

// GetRepositoryReadme returns the decoded README, empty when the repository has none
func (s *githubService) GetRepositoryReadme(ctx context.Context, name string, useCache bool) (string, error) {
	return cached(ctx, s, s.repositoryKey("readme", name), useCache, func(ctx context.Context) (string, error) {
		if err := s.acquire(1); err != nil {
			return "", err
		}

		content, _, err := s.githubClient.Repositories.GetReadme(ctx, s.config.Github.Username, name, nil)
		if err != nil {
			err = s.HandleRequestErrors(err)
			if isNotFound(err) {
				log.WithField("repository", name).Debug("repository has no readme")
				return "", nil
			}

			return "", err
		}

		readme, err := content.GetContent()
		if err != nil {
			return "", model.NewUpstreamError(model.KindFetch, 0, fmt.Errorf("unable to decode readme of %s: %w", name, err))
		}

		return readme, nil
	})
}

// GetRecentCommits returns commits authored by the profile owner, newest first.
// Without a repository name only the first CommitFanOutLimit repositories of
// the list are inspected, CommitsPerRepository commits each.
func (s *githubService) GetRecentCommits(ctx context.Context, repoName string, limit int, useCache bool) ([]model.Commit, error) {
	if limit <= 0 {
		limit = DefaultCommitLimit
	}

	if repoName != "" {
		return cached(ctx, s, s.key("commits", repoName, limit), useCache, func(ctx context.Context) ([]model.Commit, error) {
			return s.fetchCommits(ctx, repoName, limit)
		})
	}

	return cached(ctx, s, s.key("commits", "*", limit), useCache, func(ctx context.Context) ([]model.Commit, error) {
		repos, err := s.ListRepositories(ctx, useCache)
		if err != nil {
			return nil, err
		}

		fanOut := s.config.Github.CommitFanOutLimit
		if fanOut <= 0 {
			fanOut = config.DefaultCommitFanOutLimit
		}

		if len(repos) > fanOut {
			repos = repos[:fanOut]
		}

		commits, err := s.fetchCommitsForRepositories(ctx, repos)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(commits, func(i, j int) bool {
			return commits[i].Date.After(commits[j].Date)
		})

		if len(commits) > limit {
			commits = commits[:limit]
		}

		return commits, nil
	})
}

// fetchCommitsForRepositories loads commits of every repository in parallel.
// A repository that fails is skipped unless the failure concerns the whole
// token (authentication or rate limit).
func (s *githubService) fetchCommitsForRepositories(ctx context.Context, repos []model.Repository) ([]model.Commit, error) {
	perRepository := s.config.Github.CommitsPerRepository
	if perRepository <= 0 {
		perRepository = config.GetDefault().Github.CommitsPerRepository
	}

	parallel := s.config.Tasks.MaxParallelTasksAllowed
	if parallel <= 0 {
		parallel = 1
	}

	swg := sizedwaitgroup.New(parallel)
	results := make([][]model.Commit, len(repos))
	errs := make([]error, len(repos))

	log.WithField("numberOfRepositories", len(repos)).Debug("will load recent commits from repositories")

	for i, r := range repos {
		swg.Add()

		go func(i int, name string) {
			defer swg.Done()
			results[i], errs[i] = s.fetchCommits(ctx, name, perRepository)
		}(i, r.Name)
	}

	swg.Wait()

	commits := make([]model.Commit, 0, len(repos)*perRepository)

	for i := range repos {
		if errs[i] != nil {
			switch model.KindOf(errs[i]) {
			case model.KindAuthentication, model.KindRateLimit:
				return nil, errs[i]
			}

			log.WithError(errs[i]).WithField("repository", repos[i].Name).Warning("unable to load commits, repository skipped")
			continue
		}

		commits = append(commits, results[i]...)
	}

	return commits, nil
}

func (s *githubService) fetchCommits(ctx context.Context, repoName string, limit int) ([]model.Commit, error) {
	if err := s.acquire(1); err != nil {
		return nil, err
	}

	if limit > pageSize {
		limit = pageSize
	}

	log.WithFields(log.Fields{
		"repository": repoName,
		"limit":      limit,
	}).Debug("fetch commits for repository")

	page, _, err := s.githubClient.Repositories.ListCommits(ctx, s.config.Github.Username, repoName, &github.CommitsListOptions{
		Author: s.config.Github.Username,
		ListOptions: github.ListOptions{
			PerPage: limit,
		},
	})
	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	commits := make([]model.Commit, 0, len(page))
	for _, c := range page {
		if c == nil {
			continue
		}
		commits = append(commits, normalizeCommit(c, repoName))
	}

	return commits, nil
}

// GetRepositoryStats derives the aggregate statistics of the repository list
func (s *githubService) GetRepositoryStats(ctx context.Context, useCache bool) (model.StatsSnapshot, error) {
	return cached(ctx, s, s.key("stats"), useCache, func(ctx context.Context) (model.StatsSnapshot, error) {
		repos, err := s.ListRepositories(ctx, useCache)
		if err != nil {
			return model.StatsSnapshot{}, err
		}

		return analytics.ComputeStats(repos), nil
	})
}

// GetContributionActivity derives activity from a sample of recent commits
func (s *githubService) GetContributionActivity(ctx context.Context, useCache bool) (model.ActivitySnapshot, error) {
	return cached(ctx, s, s.key("activity"), useCache, func(ctx context.Context) (model.ActivitySnapshot, error) {
		commits, err := s.GetRecentCommits(ctx, "", ActivitySampleSize, useCache)
		if err != nil {
			return model.ActivitySnapshot{}, err
		}

		return analytics.ComputeActivity(commits), nil
	})
}

// GetRateLimit always queries GitHub, a stale quota is worse than none
func (s *githubService) GetRateLimit(ctx context.Context) (model.RateLimitStatus, error) {
	limits, _, err := s.githubClient.RateLimit.Get(ctx)
	if err != nil {
		return model.RateLimitStatus{}, s.HandleRequestErrors(err)
	}

	return model.RateLimitStatus{
		Core:   normalizeRate(limits.GetCore()),
		Search: normalizeRate(limits.GetSearch()),
	}, nil
}

func normalizeRate(r *github.Rate) model.RateBucket {
	if r == nil {
		return model.RateBucket{}
	}

	return model.RateBucket{
		Limit:     r.Limit,
		Remaining: r.Remaining,
		Used:      r.Limit - r.Remaining,
		ResetAt:   r.Reset.Time,
	}
}

func normalizeRepository(r *github.Repository) model.Repository {
	repository := model.Repository{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Topics:      model.UniqueTopics(r.Topics),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		OpenIssues:  r.GetOpenIssuesCount(),
	}

	if r.Language != nil && *r.Language != "" {
		language := *r.Language
		repository.Language = &language
	}

	if r.Homepage != nil && *r.Homepage != "" {
		homepage := *r.Homepage
		repository.Homepage = &homepage
	}

	return repository
}

func normalizeCommit(c *github.RepositoryCommit, repoName string) model.Commit {
	commit := c.GetCommit()

	return model.Commit{
		SHA:        c.GetSHA(),
		Message:    commit.GetMessage(),
		Author:     commit.GetAuthor().GetName(),
		Date:       commit.GetAuthor().GetDate().Time,
		URL:        c.GetHTMLURL(),
		Repository: repoName,
	}
}
