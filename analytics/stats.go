// Package analytics derives statistics, activity, skills and portfolio views
// from normalized repositories and commits. Every function is pure.
package analytics

import (
	"sort"

	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/montanaflynn/stats"
)

// RecentlyUpdatedCount is the size of the recently updated list
const RecentlyUpdatedCount = 5

// LanguageBreakdown groups repositories by primary language.
// Percentages are relative to the repositories with a detected language, not
// to every repository, so they sum to 100 (two-decimal rounding per entry)
// even when some repositories have no language. Rows are ordered by count,
// ties keep the order in which languages were first seen.
func LanguageBreakdown(repos []model.Repository) []model.LanguageShare {
	shares := make([]model.LanguageShare, 0)
	index := make(map[string]int)
	withLanguage := 0

	for _, r := range repos {
		if r.Language == nil || *r.Language == "" {
			continue
		}

		withLanguage++
		i, found := index[*r.Language]
		if !found {
			i = len(shares)
			index[*r.Language] = i
			shares = append(shares, model.LanguageShare{Language: *r.Language, Repositories: []string{}})
		}

		shares[i].Count++
		shares[i].Repositories = append(shares[i].Repositories, r.Name)
	}

	for i := range shares {
		shares[i].Percentage = percentage(shares[i].Count, withLanguage)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})

	return shares
}

// ComputeStats builds the aggregate snapshot of a repository list
func ComputeStats(repos []model.Repository) model.StatsSnapshot {
	snapshot := model.StatsSnapshot{
		TotalRepositories: len(repos),
		Languages:         LanguageBreakdown(repos),
		RecentlyUpdated:   make([]model.RecentRepository, 0, RecentlyUpdatedCount),
	}

	starCounts := make([]float64, 0, len(repos))

	for i, r := range repos {
		snapshot.TotalStars += r.Stars
		snapshot.TotalForks += r.Forks
		snapshot.TotalOpenIssues += r.OpenIssues
		starCounts = append(starCounts, float64(r.Stars))

		// strict comparison, first seen wins ties
		if snapshot.MostStarred == nil || r.Stars > snapshot.MostStarred.Count {
			snapshot.MostStarred = &model.RepositoryRef{Name: repos[i].Name, URL: repos[i].URL, Count: r.Stars}
		}

		if snapshot.MostForked == nil || r.Forks > snapshot.MostForked.Count {
			snapshot.MostForked = &model.RepositoryRef{Name: repos[i].Name, URL: repos[i].URL, Count: r.Forks}
		}
	}

	if mean, err := stats.Mean(starCounts); err == nil {
		snapshot.AverageStars = round(mean)
	}

	if median, err := stats.Median(starCounts); err == nil {
		snapshot.MedianStars = round(median)
	}

	sorted := make([]model.Repository, len(repos))
	copy(sorted, repos)
	model.SortRepositories(sorted, model.SortUpdated, model.OrderDesc)

	for _, r := range sorted {
		if len(snapshot.RecentlyUpdated) == RecentlyUpdatedCount {
			break
		}

		snapshot.RecentlyUpdated = append(snapshot.RecentlyUpdated, model.RecentRepository{
			Name:      r.Name,
			URL:       r.URL,
			UpdatedAt: r.UpdatedAt,
		})
	}

	return snapshot
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}

	return round(float64(count) / float64(total) * 100)
}

// round keeps two decimal places
func round(value float64) float64 {
	rounded, err := stats.Round(value, 2)
	if err != nil {
		return value
	}

	return rounded
}
