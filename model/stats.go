package model

import "time"

// NotApplicable is reported when a value cannot be derived from an empty sample
const NotApplicable = "N/A"

// LanguageShare is one row of the language breakdown
type LanguageShare struct {
	Language     string   `json:"language"`
	Count        int      `json:"count"`
	Repositories []string `json:"repositories"`
	Percentage   float64  `json:"percentage"`
}

// RepositoryRef points to a repository with the metric that selected it
type RepositoryRef struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type RecentRepository struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatsSnapshot is derived from the current repository list
type StatsSnapshot struct {
	TotalRepositories int                `json:"totalRepositories"`
	TotalStars        int                `json:"totalStars"`
	TotalForks        int                `json:"totalForks"`
	TotalOpenIssues   int                `json:"totalOpenIssues"`
	AverageStars      float64            `json:"averageStars"`
	MedianStars       float64            `json:"medianStars"`
	Languages         []LanguageShare    `json:"languages"`
	MostStarred       *RepositoryRef     `json:"mostStarred"`
	MostForked        *RepositoryRef     `json:"mostForked"`
	RecentlyUpdated   []RecentRepository `json:"recentlyUpdated"`
}

// ActivitySnapshot is derived from a bounded commit sample, not the lifetime graph
type ActivitySnapshot struct {
	TotalCommits       int      `json:"totalCommits"`
	ActiveRepositories int      `json:"activeRepositories"`
	RepositoryNames    []string `json:"repositoryNames"`
	MostActiveDay      string   `json:"mostActiveDay"`
	CurrentStreak      int      `json:"currentStreak"`
	RecentCommits      []Commit `json:"recentCommits"`
}

// ContributionDay is one cell of the GitHub contribution calendar
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ContributionCalendar summarises the last year of contributions
type ContributionCalendar struct {
	TotalContributions int               `json:"totalContributions"`
	ActiveDays         int               `json:"activeDays"`
	BusiestDay         string            `json:"busiestDay"`
	CurrentStreak      int               `json:"currentStreak"`
	Days               []ContributionDay `json:"days,omitempty"`
}

type LanguageSkill struct {
	Language     string `json:"language"`
	Repositories int    `json:"repositories"`
	Proficiency  string `json:"proficiency"`
}

type DomainSkill struct {
	Domain       string   `json:"domain"`
	Repositories []string `json:"repositories"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// SkillsMatrix classifies the repositories by language and domain
type SkillsMatrix struct {
	Languages []LanguageSkill `json:"languages"`
	Domains   []DomainSkill   `json:"domains"`
	Topics    []TopicCount    `json:"topics"`
}

type FeaturedProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Stars       int      `json:"stars"`
	Language    string   `json:"language,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Pinned      bool     `json:"pinned"`
}

// PortfolioSummary is the narrative view of the profile
type PortfolioSummary struct {
	Username         string            `json:"username"`
	Summary          string            `json:"summary"`
	Highlights       []string          `json:"highlights"`
	FeaturedProjects []FeaturedProject `json:"featuredProjects"`
	Stats            StatsSnapshot     `json:"stats"`
	Activity         ActivitySnapshot  `json:"activity"`
	Skills           SkillsMatrix      `json:"skills"`
}
