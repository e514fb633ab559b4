package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui/theme"
)

// ConfigFormValues are the settings edited by the config wizard.
type ConfigFormValues struct {
	Provider      string
	APIKey        string // empty keeps the configured key
	Tier          string
	Model         string
	Backend       string
	IncludeRemote bool
	WatchRefs     bool
	OutputDir     string
	Theme         string
}

// ConfigFormValuesFrom seeds the wizard from cfg.
func ConfigFormValuesFrom(cfg *domain.Config) ConfigFormValues {
	return ConfigFormValues{
		Provider:      cfg.AI.Provider,
		Tier:          cfg.AI.APITier,
		Model:         cfg.AI.DefaultModel,
		Backend:       cfg.Git.Backend,
		IncludeRemote: cfg.Git.IncludeRemote,
		WatchRefs:     cfg.Git.WatchRefs,
		OutputDir:     cfg.Learn.OutputDir,
		Theme:         cfg.UI.Theme,
	}
}

// Apply writes the edited values back into cfg.
func (v ConfigFormValues) Apply(cfg *domain.Config) {
	cfg.AI.Provider = v.Provider
	if key := strings.TrimSpace(v.APIKey); key != "" {
		cfg.AI.APIKey = key
	}
	cfg.AI.APITier = v.Tier
	cfg.AI.DefaultModel = v.Model
	cfg.Git.Backend = v.Backend
	cfg.Git.IncludeRemote = v.IncludeRemote
	cfg.Git.WatchRefs = v.WatchRefs
	cfg.Learn.OutputDir = strings.TrimSpace(v.OutputDir)
	cfg.UI.Theme = v.Theme
}

func mlearnHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	primary := theme.Current().ColorPrimary
	t.Focused.Title = t.Focused.Title.Foreground(primary)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(primary).Foreground(lipgloss.Color("#FFFFFF"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

// NewConfigForm builds the configuration wizard bound to v.
func NewConfigForm(v *ConfigFormValues, hasKey bool) *huh.Form {
	keyDescription := "Get a free key at https://cloud.cerebras.ai/"
	if hasKey {
		keyDescription = "Leave empty to keep the current key"
	}

	themeOptions := make([]huh.Option[string], 0, len(theme.All()))
	for _, t := range theme.All() {
		themeOptions = append(themeOptions, huh.NewOption(t.Name+" - "+t.Description, t.Name))
	}

	ai := huh.NewGroup(
		huh.NewSelect[string]().
			Title("AI provider").
			Options(huh.NewOption("Cerebras", "cerebras")).
			Value(&v.Provider),
		huh.NewInput().
			Title("API key").
			Description(keyDescription).
			EchoMode(huh.EchoModePassword).
			Value(&v.APIKey).
			Validate(func(s string) error {
				if !hasKey && strings.TrimSpace(s) == "" {
					return errors.New("an API key is required")
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("API tier").
			Options(huh.NewOption("Free", "free"), huh.NewOption("Pro", "pro")).
			Value(&v.Tier),
		huh.NewSelect[string]().
			Title("Model").
			Options(
				huh.NewOption("llama-3.3-70b (recommended)", "llama-3.3-70b"),
				huh.NewOption("llama3.1-8b (faster)", "llama3.1-8b"),
			).
			Value(&v.Model),
	).Title("AI")

	git := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Git backend").
			Options(
				huh.NewOption("git binary", domain.GitBackendExec),
				huh.NewOption("go-git (no git install needed)", domain.GitBackendGoGit),
			).
			Value(&v.Backend),
		huh.NewConfirm().
			Title("Offer remote-only branches?").
			Affirmative("Yes").
			Negative("No").
			Value(&v.IncludeRemote),
		huh.NewConfirm().
			Title("Refresh branches when refs change?").
			Affirmative("Yes").
			Negative("No").
			Value(&v.WatchRefs),
		huh.NewInput().
			Title("Output directory for GitHub repositories").
			Description("Local repositories write into .openhands/microagents").
			Value(&v.OutputDir),
	).Title("Branches")

	look := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOptions...).
			Value(&v.Theme),
	).Title("Appearance")

	return huh.NewForm(ai, git, look).
		WithTheme(mlearnHuhTheme())
}

// RunConfigWizard edits cfg interactively. cfg is only changed when the
// form completes.
func RunConfigWizard(cfg *domain.Config) error {
	values := ConfigFormValuesFrom(cfg)
	if err := NewConfigForm(&values, cfg.HasAPIKey()).Run(); err != nil {
		return err
	}
	values.Apply(cfg)
	return nil
}
