package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var errLocalBudgetExhausted = errors.New("local github request budget exhausted")

// HandleRequestErrors classifies a GitHub client error.
// Rate limit errors also drain the local rate limiter so it stays in sync with GitHub.
func (s *githubService) HandleRequestErrors(err error) error {
	var upstreamErr *model.UpstreamError
	if errors.As(err, &upstreamErr) {
		return err
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		s.drainRateLimiter()
		log.Warning("the Github rate limit has been reached. Wait until the limit reset or rely on the cache")
		return model.NewUpstreamError(model.KindRateLimit, statusCode(rateLimitErr.Response), err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		log.Warning("the Github secondary rate limit has been reached")
		return model.NewUpstreamError(model.KindRateLimit, statusCode(abuseErr.Response), err)
	}

	var responseErr *github.ErrorResponse
	if errors.As(err, &responseErr) {
		code := statusCode(responseErr.Response)

		switch {
		case code == http.StatusUnauthorized:
			return model.NewUpstreamError(model.KindAuthentication, code, err)
		case code == http.StatusNotFound:
			return model.NewUpstreamError(model.KindNotFound, code, err)
		case code == http.StatusForbidden && strings.Contains(strings.ToLower(responseErr.Message), "rate limit"):
			s.drainRateLimiter()
			return model.NewUpstreamError(model.KindRateLimit, code, err)
		case code == http.StatusForbidden:
			return model.NewUpstreamError(model.KindAuthentication, code, err)
		}

		log.WithError(err).WithField("status", code).Error("error catched when fetching data from github")
		return model.NewUpstreamError(model.KindFetch, code, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return model.NewUpstreamError(model.KindFetch, 0, err)
	}

	// the graphql client only exposes the status in the message
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "401"), strings.Contains(message, "bad credentials"):
		return model.NewUpstreamError(model.KindAuthentication, http.StatusUnauthorized, err)
	case strings.Contains(message, "rate limit"):
		return model.NewUpstreamError(model.KindRateLimit, 0, err)
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return model.NewUpstreamError(model.KindFetch, 0, err)
}

// acquire consumes n tokens from the local budget before calling GitHub
func (s *githubService) acquire(n int) error {
	if s.githubRateLimiter.AllowN(time.Now(), n) {
		return nil
	}

	log.WithField("requests", n).Warning("not enough requests left in the local rate limiter")
	return model.NewUpstreamError(model.KindRateLimit, 0, errLocalBudgetExhausted)
}

// drainRateLimiter takes whatever is left in the local bucket, so requests
// fail locally until the bucket refills.
func (s *githubService) drainRateLimiter() {
	if s.githubRateLimiter.Limit() == rate.Inf {
		return
	}

	now := time.Now()
	if left := int(s.githubRateLimiter.TokensAt(now)); left > 0 {
		s.githubRateLimiter.ReserveN(now, left)
	}
}

func statusCode(resp *http.Response) int {
	if resp == nil {
		return 0
	}

	return resp.StatusCode
}

// isNotFound reports a 404 from GitHub, used where absence is not an error
func isNotFound(err error) bool {
	return model.KindOf(err) == model.KindNotFound
}
