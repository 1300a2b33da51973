package analytics

import (
	"sort"
	"time"

	"github.com/Scalingo/github-profile-mcp/model"
)

// RecentCommitsInActivity is how many commits are echoed in the activity snapshot
const RecentCommitsInActivity = 10

// MostActiveDay returns the UTC date with the most commits.
// Ties resolve to the earliest date. An empty sample yields model.NotApplicable.
func MostActiveDay(commits []model.Commit) string {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.Day()]++
	}

	return busiestDay(counts)
}

func busiestDay(counts map[string]int) string {
	if len(counts) == 0 {
		return model.NotApplicable
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	best := days[0]
	for _, day := range days[1:] {
		if counts[day] > counts[best] {
			best = day
		}
	}

	return best
}

// CurrentStreak counts consecutive days starting from the most recent date
// of the sample. The newest date alone is a streak of 1, the walk stops at
// the first gap larger than one day. Invalid dates are ignored.
func CurrentStreak(dates []string) int {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))

	for _, d := range dates {
		if _, found := seen[d]; found {
			continue
		}
		seen[d] = struct{}{}

		day, err := time.Parse(model.DayLayout, d)
		if err != nil {
			continue
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}

	return streak
}

// ComputeActivity derives the activity snapshot from a commit sample
func ComputeActivity(commits []model.Commit) model.ActivitySnapshot {
	dates := make([]string, 0, len(commits))
	repositories := make([]string, 0)
	seenRepositories := make(map[string]struct{})

	for _, c := range commits {
		dates = append(dates, c.Day())

		if _, found := seenRepositories[c.Repository]; !found {
			seenRepositories[c.Repository] = struct{}{}
			repositories = append(repositories, c.Repository)
		}
	}

	recent := commits
	if len(recent) > RecentCommitsInActivity {
		recent = recent[:RecentCommitsInActivity]
	}

	return model.ActivitySnapshot{
		TotalCommits:       len(commits),
		ActiveRepositories: len(repositories),
		RepositoryNames:    repositories,
		MostActiveDay:      MostActiveDay(commits),
		CurrentStreak:      CurrentStreak(dates),
		RecentCommits:      append([]model.Commit{}, recent...),
	}
}

// ComputeCalendar summarises contribution calendar days
func ComputeCalendar(days []model.ContributionDay) model.ContributionCalendar {
	calendar := model.ContributionCalendar{Days: days}
	counts := make(map[string]int)
	active := make([]string, 0)

	for _, d := range days {
		calendar.TotalContributions += d.Count
		if d.Count > 0 {
			counts[d.Date] += d.Count
			active = append(active, d.Date)
		}
	}

	calendar.ActiveDays = len(counts)
	calendar.BusiestDay = busiestDay(counts)
	calendar.CurrentStreak = CurrentStreak(active)

	return calendar
}
