package model

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNone    SortKey = ""
	SortStars   SortKey = "stars"
	SortForks   SortKey = "forks"
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
	SortName    SortKey = "name"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// SortKeys lists the accepted sort_by values
var SortKeys = []string{string(SortStars), string(SortForks), string(SortUpdated), string(SortCreated), string(SortName)}

// RepositoryQuery filters and orders a repository list.
// Zero values disable the matching criterion.
type RepositoryQuery struct {
	Language string    `json:"language" form:"language"`
	Topic    string    `json:"topic" form:"topic"`
	MinStars int       `json:"min_stars" form:"min_stars"`
	SortBy   SortKey   `json:"sort_by" form:"sort_by"`
	Order    SortOrder `json:"order" form:"order"`
	Limit    int       `json:"limit" form:"limit"`
}

// Validate rejects unknown sort keys and orders
func (q RepositoryQuery) Validate() error {
	switch q.SortBy {
	case SortNone, SortStars, SortForks, SortUpdated, SortCreated, SortName:
	default:
		return InvalidArgument("sort_by must be one of %s, got %q", strings.Join(SortKeys, ", "), q.SortBy)
	}

	switch q.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return InvalidArgument("order must be asc or desc, got %q", q.Order)
	}

	if q.MinStars < 0 {
		return InvalidArgument("min_stars must be positive, got %d", q.MinStars)
	}

	if q.Limit < 0 {
		return InvalidArgument("limit must be positive, got %d", q.Limit)
	}

	return nil
}

// Matches applies the filter conjunction to one repository
func (q RepositoryQuery) Matches(r Repository) bool {
	if q.Language != "" {
		if r.Language == nil || !strings.EqualFold(*r.Language, q.Language) {
			return false
		}
	}

	if q.Topic != "" {
		needle := strings.ToLower(q.Topic)
		found := false

		for _, topic := range r.Topics {
			if strings.Contains(strings.ToLower(topic), needle) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return r.Stars >= q.MinStars
}

// Apply returns a new slice with the matching repositories, sorted and truncated.
// The input slice is never reordered.
func (q RepositoryQuery) Apply(repos []Repository) []Repository {
	results := make([]Repository, 0, len(repos))

	for _, r := range repos {
		if q.Matches(r) {
			results = append(results, r)
		}
	}

	SortRepositories(results, q.SortBy, q.Order)

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}

	return results
}

// SortRepositories sorts in place, SortNone keeps the fetch order.
// Names are compared with an English collation ignoring case.
func SortRepositories(repos []Repository, key SortKey, order SortOrder) {
	if key == SortNone {
		return
	}

	var less func(a, b Repository) bool

	switch key {
	case SortStars:
		less = func(a, b Repository) bool { return a.Stars < b.Stars }
	case SortForks:
		less = func(a, b Repository) bool { return a.Forks < b.Forks }
	case SortUpdated:
		less = func(a, b Repository) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortCreated:
		less = func(a, b Repository) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortName:
		collator := collate.New(language.English, collate.IgnoreCase)
		less = func(a, b Repository) bool { return collator.CompareString(a.Name, b.Name) < 0 }
	default:
		panic(fmt.Sprintf("unsupported sort key %q", key))
	}

	if order == OrderAsc {
		sort.SliceStable(repos, func(i, j int) bool { return less(repos[i], repos[j]) })
		return
	}

	sort.SliceStable(repos, func(i, j int) bool { return less(repos[j], repos[i]) })
}
