package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Scalingo/github-profile-mcp/model"
)

const (
	ProficiencyExpert       = "Expert"
	ProficiencyAdvanced     = "Advanced"
	ProficiencyIntermediate = "Intermediate"
)

// Domain is a skill bucket and the keywords that put a repository in it.
// Single-word keywords must match a whole word of the name, description or
// topics, keywords with a separator match as a substring.
type Domain struct {
	Name     string
	Keywords []string
}

var Domains = []Domain{
	{
		Name:     "DevOps & CI/CD",
		Keywords: []string{"devops", "ci", "cd", "ci/cd", "cicd", "github-actions", "pipeline", "jenkins", "gitlab-ci", "docker", "ansible", "deployment", "argocd"},
	},
	{
		Name:     "Web Development",
		Keywords: []string{"web", "website", "frontend", "backend", "react", "vue", "angular", "svelte", "nextjs", "html", "css", "django", "flask", "express", "rails"},
	},
	{
		Name:     "AI & Machine Learning",
		Keywords: []string{"ai", "ml", "machine-learning", "machine learning", "deep-learning", "deep learning", "llm", "nlp", "pytorch", "tensorflow", "openai", "neural"},
	},
	{
		Name:     "Cloud & Infrastructure",
		Keywords: []string{"cloud", "aws", "azure", "gcp", "terraform", "kubernetes", "k8s", "helm", "serverless", "infrastructure", "iac", "pulumi"},
	},
	{
		Name:     "Microservices",
		Keywords: []string{"microservice", "microservices", "grpc", "service-mesh", "api-gateway", "kafka", "rabbitmq", "nats", "distributed"},
	},
	{
		Name:     "Data & Databases",
		Keywords: []string{"database", "sql", "postgres", "postgresql", "mysql", "mongodb", "redis", "etl", "data-engineering", "analytics"},
	},
	{
		Name:     "Mobile Development",
		Keywords: []string{"mobile", "android", "ios", "flutter", "react-native", "swiftui"},
	},
	{
		Name:     "Developer Tooling",
		Keywords: []string{"cli", "tool", "tooling", "sdk", "library", "plugin", "vscode-extension", "mcp"},
	},
}

// Proficiency maps a repository count to a tier
func Proficiency(repositories int) string {
	switch {
	case repositories >= 10:
		return ProficiencyExpert
	case repositories >= 5:
		return ProficiencyAdvanced
	default:
		return ProficiencyIntermediate
	}
}

// BuildSkillsMatrix classifies the repositories by language, domain and topic
func BuildSkillsMatrix(repos []model.Repository) model.SkillsMatrix {
	matrix := model.SkillsMatrix{
		Languages: make([]model.LanguageSkill, 0),
		Domains:   make([]model.DomainSkill, 0),
		Topics:    make([]model.TopicCount, 0),
	}

	for _, share := range LanguageBreakdown(repos) {
		matrix.Languages = append(matrix.Languages, model.LanguageSkill{
			Language:     share.Language,
			Repositories: share.Count,
			Proficiency:  Proficiency(share.Count),
		})
	}

	for _, domain := range Domains {
		members := make([]string, 0)
		for _, r := range repos {
			if domain.Matches(r) {
				members = append(members, r.Name)
			}
		}

		if len(members) > 0 {
			matrix.Domains = append(matrix.Domains, model.DomainSkill{Domain: domain.Name, Repositories: members})
		}
	}

	topicCounts := make(map[string]int)
	for _, r := range repos {
		for _, topic := range r.Topics {
			topicCounts[strings.ToLower(topic)]++
		}
	}

	for topic, count := range topicCounts {
		matrix.Topics = append(matrix.Topics, model.TopicCount{Topic: topic, Count: count})
	}

	sort.Slice(matrix.Topics, func(i, j int) bool {
		if matrix.Topics[i].Count != matrix.Topics[j].Count {
			return matrix.Topics[i].Count > matrix.Topics[j].Count
		}
		return matrix.Topics[i].Topic < matrix.Topics[j].Topic
	})

	return matrix
}

// prefixKeywordLength is the shortest keyword matched as a word prefix,
// shorter ones such as "ai" or "ci" must be a whole word
const prefixKeywordLength = 4

// Matches reports whether the repository belongs to the domain.
// Keywords with a separator match as substrings, others must start a word of
// the name, description or topics ("docker" matches "Dockerized").
func (d Domain) Matches(r model.Repository) bool {
	texts := append([]string{r.Name, r.Description}, r.Topics...)
	lowered := strings.ToLower(strings.Join(texts, " "))

	words := strings.FieldsFunc(lowered, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})

	for _, keyword := range d.Keywords {
		if strings.ContainsAny(keyword, " -/") {
			if strings.Contains(lowered, keyword) {
				return true
			}
			continue
		}

		for _, word := range words {
			if word == keyword {
				return true
			}
			if len(keyword) >= prefixKeywordLength && strings.HasPrefix(word, keyword) {
				return true
			}
		}
	}

	return false
}
