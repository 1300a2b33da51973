package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Scalingo/github-profile-mcp/model"
)

// FeaturedFromStars is how many repositories are picked by stars after the pinned ones
const FeaturedFromStars = 4

// FeaturedProjects returns the pinned entries followed by the most starred
// repositories that are not pinned and have at least one star
func FeaturedProjects(repos []model.Repository, pinned []model.FeaturedProject) []model.FeaturedProject {
	featured := make([]model.FeaturedProject, 0, len(pinned)+FeaturedFromStars)
	pinnedNames := make(map[string]struct{}, len(pinned))

	for _, p := range pinned {
		p.Pinned = true
		featured = append(featured, p)
		pinnedNames[strings.ToLower(p.Name)] = struct{}{}
	}

	candidates := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if _, isPinned := pinnedNames[strings.ToLower(r.Name)]; isPinned || r.Stars <= 0 {
			continue
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Stars > candidates[j].Stars
	})

	for i, r := range candidates {
		if i == FeaturedFromStars {
			break
		}

		project := model.FeaturedProject{
			Name:        r.Name,
			Description: r.Description,
			URL:         r.URL,
			Stars:       r.Stars,
			Topics:      r.Topics,
		}
		if r.Language != nil {
			project.Language = *r.Language
		}

		featured = append(featured, project)
	}

	return featured
}

// BuildPortfolio composes the narrative summary of the profile
func BuildPortfolio(username string, repos []model.Repository, snapshot model.StatsSnapshot, activity model.ActivitySnapshot, pinned []model.FeaturedProject) model.PortfolioSummary {
	skills := BuildSkillsMatrix(repos)

	return model.PortfolioSummary{
		Username:         username,
		Summary:          summary(username, snapshot, skills),
		Highlights:       highlights(snapshot, activity),
		FeaturedProjects: FeaturedProjects(repos, pinned),
		Stats:            snapshot,
		Activity:         activity,
		Skills:           skills,
	}
}

func summary(username string, snapshot model.StatsSnapshot, skills model.SkillsMatrix) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s maintains %d public repositories with %d stars and %d forks in total.",
		username, snapshot.TotalRepositories, snapshot.TotalStars, snapshot.TotalForks)

	if len(snapshot.Languages) > 0 {
		top := make([]string, 0, 3)
		for i, share := range snapshot.Languages {
			if i == 3 {
				break
			}
			top = append(top, fmt.Sprintf("%s (%.2f%%)", share.Language, share.Percentage))
		}
		fmt.Fprintf(&b, " Primary languages: %s.", strings.Join(top, ", "))
	}

	if len(skills.Domains) > 0 {
		domains := make([]string, 0, len(skills.Domains))
		for _, d := range skills.Domains {
			domains = append(domains, d.Domain)
		}
		fmt.Fprintf(&b, " Work spans %s.", strings.Join(domains, ", "))
	}

	return b.String()
}

func highlights(snapshot model.StatsSnapshot, activity model.ActivitySnapshot) []string {
	lines := make([]string, 0, 4)

	if snapshot.MostStarred != nil && snapshot.MostStarred.Count > 0 {
		lines = append(lines, fmt.Sprintf("Most starred project: %s (%d stars)", snapshot.MostStarred.Name, snapshot.MostStarred.Count))
	}

	if snapshot.MostForked != nil && snapshot.MostForked.Count > 0 {
		lines = append(lines, fmt.Sprintf("Most forked project: %s (%d forks)", snapshot.MostForked.Name, snapshot.MostForked.Count))
	}

	if activity.TotalCommits > 0 {
		lines = append(lines, fmt.Sprintf("%d recent commits across %d repositories, most active on %s",
			activity.TotalCommits, activity.ActiveRepositories, activity.MostActiveDay))
	}

	if activity.CurrentStreak > 1 {
		lines = append(lines, fmt.Sprintf("Current contribution streak: %d days", activity.CurrentStreak))
	}

	return lines
}
