package service

import (
	"context"

	"github.com/Scalingo/github-profile-mcp/analytics"
	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/shurcooL/githubv4"
	log "github.com/sirupsen/logrus"
)

type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions githubv4.Int
				Weeks              []struct {
					ContributionDays []struct {
						ContributionCount githubv4.Int
						Date              githubv4.String
					}
				}
			}
		}
	} `graphql:"user(login: $login)"`
}

// GetContributionCalendar loads the contribution calendar of the last year.
// It includes contributions to repositories the profile does not own.
func (s *githubService) GetContributionCalendar(ctx context.Context, useCache bool) (model.ContributionCalendar, error) {
	return cached(ctx, s, s.key("calendar"), useCache, func(ctx context.Context) (model.ContributionCalendar, error) {
		if err := s.acquire(1); err != nil {
			return model.ContributionCalendar{}, err
		}

		log.WithField("username", s.config.Github.Username).Info("fetch contribution calendar from github")

		var query contributionsQuery
		variables := map[string]any{
			"login": githubv4.String(s.config.Github.Username),
		}

		if err := s.graphqlClient.Query(ctx, &query, variables); err != nil {
			return model.ContributionCalendar{}, s.HandleRequestErrors(err)
		}

		days := make([]model.ContributionDay, 0, 371)
		for _, week := range query.User.ContributionsCollection.ContributionCalendar.Weeks {
			for _, day := range week.ContributionDays {
				days = append(days, model.ContributionDay{
					Date:  string(day.Date),
					Count: int(day.ContributionCount),
				})
			}
		}

		calendar := analytics.ComputeCalendar(days)
		calendar.TotalContributions = int(query.User.ContributionsCollection.ContributionCalendar.TotalContributions)

		return calendar, nil
	})
}
