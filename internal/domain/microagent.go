package domain

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyQuery is returned when the learn form is submitted without a question.
var ErrEmptyQuery = errors.New("query cannot be empty")

// MicroagentFormData is the payload produced when the learn dialog is confirmed.
type MicroagentFormData struct {
	Query          string
	SelectedBranch string // empty when no branch was chosen
}

// NewMicroagentFormData trims the inputs and validates the query.
func NewMicroagentFormData(query, branch string) (MicroagentFormData, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return MicroagentFormData{}, ErrEmptyQuery
	}
	return MicroagentFormData{
		Query:          query,
		SelectedBranch: strings.TrimSpace(branch),
	}, nil
}

// MicroagentKind is the activation style of a microagent.
type MicroagentKind string

const (
	// MicroagentRepo is always loaded for its repository.
	MicroagentRepo MicroagentKind = "repo"
	// MicroagentKnowledge is loaded when one of its triggers appears.
	MicroagentKnowledge MicroagentKind = "knowledge"
)

// ParseMicroagentKind parses a kind, defaulting to knowledge.
func ParseMicroagentKind(s string) MicroagentKind {
	if MicroagentKind(strings.ToLower(strings.TrimSpace(s))) == MicroagentRepo {
		return MicroagentRepo
	}
	return MicroagentKnowledge
}

// Microagent is a learned, repository-specific automation profile.
type Microagent struct {
	name     string
	kind     MicroagentKind
	triggers []string
	content  string
}

// NewMicroagent creates a microagent. Knowledge microagents need at least one trigger.
func NewMicroagent(name string, kind MicroagentKind, triggers []string, content string) (*Microagent, error) {
	if SlugifyName(name) == "" {
		return nil, errors.New("microagent name cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("microagent content cannot be empty")
	}

	cleaned := make([]string, 0, len(triggers))
	seen := make(map[string]bool, len(triggers))
	for _, t := range triggers {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		cleaned = append(cleaned, t)
	}
	if kind == MicroagentKnowledge && len(cleaned) == 0 {
		return nil, errors.New("knowledge microagent requires at least one trigger")
	}

	return &Microagent{
		name:     strings.TrimSpace(name),
		kind:     kind,
		triggers: cleaned,
		content:  strings.TrimSpace(content),
	}, nil
}

// Name returns the microagent name.
func (m *Microagent) Name() string {
	return m.name
}

// Kind returns the microagent kind.
func (m *Microagent) Kind() MicroagentKind {
	return m.kind
}

// Triggers returns the trigger keywords.
func (m *Microagent) Triggers() []string {
	return m.triggers
}

// Content returns the markdown body.
func (m *Microagent) Content() string {
	return m.content
}

// FileName returns the file name the microagent is stored under.
func (m *Microagent) FileName() string {
	return SlugifyName(m.name) + ".md"
}

// MicroagentVersion and MicroagentAgent are written into every frontmatter.
const (
	MicroagentVersion = "1.0.0"
	MicroagentAgent   = "CodeActAgent"
)

// MicroagentFrontmatter is the YAML header of a microagent file.
type MicroagentFrontmatter struct {
	Name     string         `yaml:"name"`
	Type     MicroagentKind `yaml:"type"`
	Version  string         `yaml:"version"`
	Agent    string         `yaml:"agent"`
	Triggers []string       `yaml:"triggers,omitempty"`
}

// Frontmatter returns the header fields for this microagent.
func (m *Microagent) Frontmatter() MicroagentFrontmatter {
	fm := MicroagentFrontmatter{
		Name:    SlugifyName(m.name),
		Type:    m.kind,
		Version: MicroagentVersion,
		Agent:   MicroagentAgent,
	}
	if len(m.triggers) > 0 {
		fm.Triggers = m.triggers
	}
	return fm
}

// Markdown renders the microagent with its YAML frontmatter.
func (m *Microagent) Markdown() string {
	var header bytes.Buffer
	enc := yaml.NewEncoder(&header)
	enc.SetIndent(2)
	// Only strings and string slices: encoding cannot fail.
	_ = enc.Encode(m.Frontmatter())
	_ = enc.Close()

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header.Bytes())
	sb.WriteString("---\n\n")
	sb.WriteString(m.content)
	sb.WriteString("\n")
	return sb.String()
}

// parseMicroagentFrontmatter reads the YAML header of a rendered microagent file.
func parseMicroagentFrontmatter(doc string) (MicroagentFrontmatter, error) {
	var fm MicroagentFrontmatter
	rest, ok := strings.CutPrefix(doc, "---\n")
	if !ok {
		return fm, errors.New("missing frontmatter")
	}
	header, _, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return fm, errors.New("unterminated frontmatter")
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, fmt.Errorf("invalid frontmatter: %w", err)
	}
	return fm, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyName turns a free-form name into a file-safe slug.
func SlugifyName(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
