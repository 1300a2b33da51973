package model

import "time"

// Repository is a normalized snapshot of a GitHub repository at fetch time.
// Values are never mutated after normalization, a refetch replaces them.
type Repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    *string   `json:"language"` // nil when GitHub could not detect one
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	OpenIssues  int       `json:"openIssues"`
	Homepage    *string   `json:"homepage"`
	Readme      *string   `json:"readme,omitempty"` // only set when explicitly requested
}

// Commit is one commit authored by the profile owner
type Commit struct {
	SHA        string    `json:"sha"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	Date       time.Time `json:"date"`
	URL        string    `json:"url"`
	Repository string    `json:"repository"`
}

// Day returns the UTC calendar date of the commit
func (c Commit) Day() string {
	return c.Date.UTC().Format(DayLayout)
}

// DayLayout is the format of calendar dates in activity snapshots
const DayLayout = "2006-01-02"

// UniqueTopics drops duplicate topics (case-sensitive) keeping the first occurrence
func UniqueTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	unique := make([]string, 0, len(topics))

	for _, topic := range topics {
		if _, found := seen[topic]; found {
			continue
		}

		seen[topic] = struct{}{}
		unique = append(unique, topic)
	}

	return unique
}

// RateLimitStatus mirrors the upstream quota
type RateLimitStatus struct {
	Core   RateBucket `json:"core"`
	Search RateBucket `json:"search"`
}

type RateBucket struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	ResetAt   time.Time `json:"resetAt"`
}
