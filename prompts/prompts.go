// Package prompts holds the prompt templates offered to MCP clients.
//
// Each template is a markdown file with a YAML frontmatter declaring its
// name, description and arguments. The body is a text/template rendered
// with the profile username and the prompt arguments.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"text/template"

	"github.com/adrg/frontmatter"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.md
var templateFS embed.FS

type Argument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

type header struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Arguments   []Argument `yaml:"arguments"`
}

type Prompt struct {
	Name        string
	Description string
	Arguments   []Argument
	template    *template.Template
}

type renderData struct {
	Username string
	Args     map[string]string
}

// Library is the set of parsed prompts, sorted by name
type Library struct {
	prompts []Prompt
	byName  map[string]int
}

// Load parses every embedded template
func Load() (*Library, error) {
	return load(templateFS, "templates")
}

func load(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list prompt templates: %w", err)
	}

	library := &Library{byName: make(map[string]int)}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("unable to read prompt %s: %w", entry.Name(), err)
		}

		var matter header
		body, err := frontmatter.MustParse(bytes.NewReader(content), &matter)
		if err != nil {
			return nil, fmt.Errorf("invalid frontmatter in prompt %s: %w", entry.Name(), err)
		}

		if matter.Name == "" || matter.Description == "" {
			return nil, fmt.Errorf("prompt %s must declare a name and a description", entry.Name())
		}

		if _, found := library.byName[matter.Name]; found {
			return nil, fmt.Errorf("prompt %s is declared twice", matter.Name)
		}

		tmpl, err := template.New(matter.Name).Option("missingkey=zero").Parse(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid template in prompt %s: %w", matter.Name, err)
		}

		library.prompts = append(library.prompts, Prompt{
			Name:        matter.Name,
			Description: matter.Description,
			Arguments:   matter.Arguments,
			template:    tmpl,
		})
	}

	sort.Slice(library.prompts, func(i, j int) bool {
		return library.prompts[i].Name < library.prompts[j].Name
	})
	for i, p := range library.prompts {
		library.byName[p.Name] = i
	}

	log.WithField("prompts", len(library.prompts)).Debug("prompt templates loaded")

	return library, nil
}

func (l *Library) List() []Prompt {
	return l.prompts
}

// Render fills the named prompt. Missing required arguments are an error.
func (l *Library) Render(name, username string, args map[string]string) (string, error) {
	index, found := l.byName[name]
	if !found {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}

	prompt := l.prompts[index]

	if args == nil {
		args = map[string]string{}
	}

	for _, arg := range prompt.Arguments {
		if arg.Required && args[arg.Name] == "" {
			return "", fmt.Errorf("prompt %s requires the %s argument", name, arg.Name)
		}
	}

	var out bytes.Buffer
	if err := prompt.template.Execute(&out, renderData{Username: username, Args: args}); err != nil {
		return "", fmt.Errorf("unable to render prompt %s: %w", name, err)
	}

	return out.String(), nil
}
