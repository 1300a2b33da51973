package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// NewGithubClients builds the REST and GraphQL clients sharing one
// authenticated transport. Secondary rate limits are waited out for at
// most one minute, primary limits are reported to the caller.
func NewGithubClients(cfg config.Config) (*github.Client, *githubv4.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Minute, nil))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Github.Token}),
		},
	}

	restClient := github.NewClient(httpClient)

	if cfg.Github.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.Github.BaseURL, "/") + "/")
		if err != nil {
			return nil, nil, fmt.Errorf("invalid github base url %q: %w", cfg.Github.BaseURL, err)
		}

		log.WithField("baseURL", baseURL.String()).Debug("will use alternate github api address")
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if cfg.Github.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(cfg.Github.GraphQLURL, httpClient)
	}

	return restClient, graphqlClient, nil
}

// NewRateLimiter creates the local request budget and aligns it with the
// quota already consumed on GitHub. A failed sync is not fatal: the budget
// then starts full and GitHub errors drain it later.
func NewRateLimiter(ctx context.Context, cfg config.Config, githubClient *github.Client) *rate.Limiter {
	perHour := cfg.Github.RequestsPerHour
	if perHour <= 0 {
		perHour = config.GetDefault().Github.RequestsPerHour
	}

	rateLimiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour)

	log.Debug("loading current rate limit from github")
	rateLimits, _, err := githubClient.RateLimit.Get(ctx)
	if err != nil {
		log.WithError(err).Warning("unable to load current github rate limits, local budget starts full")
		return rateLimiter
	}

	core := rateLimits.GetCore()
	log.WithFields(log.Fields{
		"totalAvailable":    core.Limit,
		"remainingRequests": core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	// consume what was already used elsewhere with the same token
	used := core.Limit - core.Remaining
	if used > perHour {
		used = perHour
	}

	if used > 0 && !rateLimiter.AllowN(time.Now(), used) {
		log.WithField("used", used).Warning("unable to align the local rate limiter with github")
	}

	return rateLimiter
}
