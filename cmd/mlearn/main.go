package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/yourusername/mlearn/internal/adapter/ai"
	"github.com/yourusername/mlearn/internal/adapter/config"
	"github.com/yourusername/mlearn/internal/adapter/git"
	"github.com/yourusername/mlearn/internal/adapter/github"
	"github.com/yourusername/mlearn/internal/adapter/storage"
	"github.com/yourusername/mlearn/internal/domain"
	"github.com/yourusername/mlearn/internal/ui"
	"github.com/yourusername/mlearn/internal/ui/theme"
	"github.com/yourusername/mlearn/internal/usecase"
)

var (
	version    = "0.1.0"
	cfgManager *config.Manager
)

// repoFlags select the repository to learn about.
type repoFlags struct {
	path  string
	repo  string
	debug bool
}

func main() {
	cfgManager = config.NewManager()

	var flags repoFlags
	rootCmd := &cobra.Command{
		Use:   "mlearn",
		Short: "mlearn - learn microagents from your repositories",
		Long: `mlearn asks an AI model a question about a repository and saves the
answer as an OpenHands microagent. Run it inside a git repository, or
point it at a GitHub repository with --repo owner/name.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearn(cmd.Context(), flags)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&flags.path, "path", "p", "", "Path to a local repository (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&flags.repo, "repo", "r", "", "GitHub repository as owner/name")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Write debug logs")

	rootCmd.AddCommand(learnCmd(&flags))
	rootCmd.AddCommand(branchesCmd(&flags))
	rootCmd.AddCommand(historyCmd(&flags))
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func learnCmd(flags *repoFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "Open the Learn Microagent dialog (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearn(cmd.Context(), *flags)
		},
	}
}

func branchesCmd(flags *repoFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List the branches offered by the branch selector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranches(cmd.Context(), cmd.OutOrStdout(), *flags)
		},
	}
}

func historyCmd(flags *repoFlags) *cobra.Command {
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously learned microagents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), *flags, limit, all)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include every repository")
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Configure mlearn settings",
		Long:  `Interactive configuration wizard to set up API keys and preferences.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
}

// app holds everything a command needs after startup.
type app struct {
	cfg     *domain.Config
	gitOps  git.Operations
	closeFn func()
}

func setup(debug bool) (*app, error) {
	cfg, err := cfgManager.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	theme.SetGlobal(cfg.UI.Theme)

	closeLog, err := setupLogging(cfg.Log, debug)
	if err != nil {
		return nil, err
	}

	gitOps, err := git.NewOperations(cfg.Git.Backend)
	if err != nil {
		closeLog()
		return nil, err
	}

	slog.Debug("mlearn starting", "version", version, "config", cfgManager.ConfigPath(), "git_backend", cfg.Git.Backend)
	return &app{cfg: cfg, gitOps: gitOps, closeFn: closeLog}, nil
}

// setupLogging sends slog output to a file so it never draws over the TUI.
func setupLogging(cfg domain.LogConfig, debug bool) (func(), error) {
	path := cfg.File
	if path == "" {
		path = filepath.Join(config.DataDir(), "mlearn.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := parseLogLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() { f.Close() }, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveRepository returns the selected repository, or nil when the
// working directory is not a git repository.
func resolveRepository(ctx context.Context, gitOps git.Operations, flags repoFlags) (*domain.Repository, error) {
	if flags.repo != "" {
		return domain.NewGitHubRepository(flags.repo)
	}

	path := flags.path
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = cwd
	}

	isRepo, err := gitOps.IsGitRepo(ctx, path)
	if err != nil || !isRepo {
		if flags.path != "" {
			return nil, fmt.Errorf("%s is not a git repository", path)
		}
		slog.Info("no repository in working directory", "path", path)
		return nil, nil
	}

	repo, err := domain.NewLocalRepository(path)
	if err != nil {
		return nil, err
	}

	// Show owner/name for GitHub clones
	remote, err := gitOps.GetRemoteName(ctx, path)
	if err != nil {
		return repo, nil
	}
	url, err := gitOps.GetRemoteURL(ctx, path, remote)
	if err != nil || !git.IsGitHubRemote(url) {
		return repo, nil
	}
	if gh, err := git.ParseGitHubRepo(url); err == nil {
		repo.SetFullName(gh.FullName())
	}
	return repo, nil
}

func newFetchBranches(a *app) *usecase.FetchBranchesUseCase {
	var remote usecase.RemoteBranchSource
	if github.CheckGHAvailable() {
		remote = github.NewClient()
	}
	timeout := time.Duration(a.cfg.Git.FetchTimeoutMS) * time.Millisecond
	return usecase.NewFetchBranchesUseCase(a.gitOps, remote, a.cfg.Git.IncludeRemote, timeout)
}

// newLearner returns nil when no API key is configured.
func newLearner(a *app, history usecase.HistoryRecorder) (ui.MicroagentLearner, error) {
	apiKey, err := cfgManager.GetAPIKey(a.cfg)
	if err != nil {
		slog.Info("learning disabled", "reason", err)
		return nil, nil
	}

	provider, err := ai.NewFactory().Create(a.cfg.AI.Provider, apiKey, ai.ProviderConfig{
		APIKey:     apiKey.Key(),
		BaseURL:    a.cfg.AI.BaseURL,
		Model:      a.cfg.AI.DefaultModel,
		Timeout:    a.cfg.AI.TimeoutSeconds,
		MaxRetries: a.cfg.AI.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	return usecase.NewLearnMicroagentUseCase(a.gitOps, provider, apiKey, history, a.cfg.Learn), nil
}

func runLearn(ctx context.Context, flags repoFlags) error {
	a, err := setup(flags.debug)
	if err != nil {
		return err
	}
	defer a.closeFn()

	repo, err := resolveRepository(ctx, a.gitOps, flags)
	if err != nil {
		return err
	}

	var history usecase.HistoryRecorder
	db, err := storage.Open(storage.DefaultDBPath(config.DataDir()))
	if err != nil {
		slog.Warn("history disabled", "err", err)
	} else {
		defer db.Close()
		history = db
	}

	learner, err := newLearner(a, history)
	if err != nil {
		return err
	}

	deps := ui.AppDeps{
		Fetcher: newFetchBranches(a),
		Learner: learner,
		Config:  a.cfg,
		Repo:    repo,
		Version: version,
	}

	if repo != nil && repo.IsLocal() && a.cfg.Git.WatchRefs {
		watcher, err := git.NewRefWatcher(repo.Path(), git.DefaultRefDebounce)
		if err == nil {
			watcher.SetIncludeRemote(a.cfg.Git.IncludeRemote)
			err = watcher.Start(ctx)
		}
		if err != nil {
			slog.Warn("ref watching disabled", "err", err)
		} else {
			defer watcher.Stop()
			deps.Refs = watcher
		}
	}

	p := tea.NewProgram(ui.NewAppModel(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

func runBranches(ctx context.Context, w io.Writer, flags repoFlags) error {
	a, err := setup(flags.debug)
	if err != nil {
		return err
	}
	defer a.closeFn()

	repo, err := resolveRepository(ctx, a.gitOps, flags)
	if err != nil {
		return err
	}
	if repo == nil {
		return domain.ErrNoRepository
	}

	resp, err := newFetchBranches(a).Execute(ctx, repo)
	if err != nil {
		return err
	}

	ui.PrintInfo(fmt.Sprintf("%s %s", ui.FormatValue(repo.FullName()), ui.FormatLabel(fmt.Sprintf("(%d branches)", len(resp.Branches)))))
	ui.WriteBranches(w, resp.Branches, resp.Current)
	if name, ok := domain.PickDefaultBranch(resp.Branches); ok {
		fmt.Fprintf(w, "\n%s %s\n", ui.FormatLabel("Preselected:"), ui.FormatValue(name))
	}
	return nil
}

func runHistory(ctx context.Context, w io.Writer, flags repoFlags, limit int, all bool) error {
	a, err := setup(flags.debug)
	if err != nil {
		return err
	}
	defer a.closeFn()

	repoID := ""
	if !all {
		repo, err := resolveRepository(ctx, a.gitOps, flags)
		if err != nil {
			return err
		}
		if repo != nil {
			repoID = repo.ID()
		}
	}

	db, err := storage.Open(storage.DefaultDBPath(config.DataDir()))
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	entries, err := usecase.NewListHistoryUseCase(db).Execute(ctx, repoID, limit)
	if err != nil {
		return err
	}
	ui.WriteHistory(w, entries)
	return nil
}

func runConfig() error {
	cfg, err := cfgManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	theme.SetGlobal(cfg.UI.Theme)

	if err := ui.RunConfigWizard(cfg); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			ui.PrintWarning("Configuration cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := cfgManager.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	ui.PrintSuccess("Configuration saved to: " + cfgManager.ConfigPath())
	ui.PrintSubtle("You're all set! Run 'mlearn' inside a git repository.")
	return nil
}
