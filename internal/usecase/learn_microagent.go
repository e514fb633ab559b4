package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/mlearn/internal/adapter/ai"
	"github.com/yourusername/mlearn/internal/adapter/git"
	"github.com/yourusername/mlearn/internal/domain"
)

// HistoryRecorder persists the lifecycle of learn requests.
type HistoryRecorder interface {
	Record(ctx context.Context, entry domain.HistoryEntry) (string, error)
	Complete(ctx context.Context, id, outputPath string) error
	Fail(ctx context.Context, id string, cause error) error
}

// LearnMicroagentUseCase turns a confirmed learn form into a microagent file.
type LearnMicroagentUseCase struct {
	gitOps   git.Operations
	provider ai.Provider
	apiKey   *domain.APIKey
	history  HistoryRecorder
	cfg      domain.LearnConfig
}

// NewLearnMicroagentUseCase creates a new LearnMicroagentUseCase.
// history may be nil to disable recording.
func NewLearnMicroagentUseCase(gitOps git.Operations, provider ai.Provider, apiKey *domain.APIKey, history HistoryRecorder, cfg domain.LearnConfig) *LearnMicroagentUseCase {
	return &LearnMicroagentUseCase{
		gitOps:   gitOps,
		provider: provider,
		apiKey:   apiKey,
		history:  history,
		cfg:      cfg,
	}
}

// LearnRequest is the confirmed form for a repository.
type LearnRequest struct {
	Repo *domain.Repository
	Form domain.MicroagentFormData
}

// LearnResponse describes the written microagent.
type LearnResponse struct {
	Microagent *domain.Microagent
	Path       string
	HistoryID  string
	TokensUsed int
	Model      string
}

// Execute generates the microagent and writes it to disk.
func (uc *LearnMicroagentUseCase) Execute(ctx context.Context, req LearnRequest) (*LearnResponse, error) {
	if req.Repo == nil {
		return nil, domain.ErrNoRepository
	}
	form, err := domain.NewMicroagentFormData(req.Form.Query, req.Form.SelectedBranch)
	if err != nil {
		return nil, err
	}

	historyID := uc.record(ctx, req.Repo, form)
	logger := slog.With("repo", req.Repo.ID(), "branch", form.SelectedBranch, "history_id", historyID)
	logger.Info("learning microagent")

	resp, err := uc.learn(ctx, req.Repo, form)
	if err != nil {
		logger.Error("learn failed", "err", err)
		uc.fail(ctx, historyID, err)
		return nil, err
	}

	resp.HistoryID = historyID
	if uc.history != nil && historyID != "" {
		if err := uc.history.Complete(ctx, historyID, resp.Path); err != nil {
			logger.Warn("failed to update history", "err", err)
		}
	}

	logger.Info("microagent written", "path", resp.Path, "tokens", resp.TokensUsed)
	return resp, nil
}

func (uc *LearnMicroagentUseCase) learn(ctx context.Context, repo *domain.Repository, form domain.MicroagentFormData) (*LearnResponse, error) {
	aiResp, err := uc.provider.GenerateMicroagent(ctx, ai.MicroagentRequest{
		Repository: repo,
		Query:      form.Query,
		Branch:     form.SelectedBranch,
		RecentLog:  uc.recentLog(ctx, repo, form.SelectedBranch),
		APIKey:     uc.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate microagent: %w", err)
	}

	dir, err := uc.outputDir(repo)
	if err != nil {
		return nil, err
	}
	path, err := writeMicroagent(dir, aiResp.Microagent, uc.cfg.Overwrite)
	if err != nil {
		return nil, err
	}

	return &LearnResponse{
		Microagent: aiResp.Microagent,
		Path:       path,
		TokensUsed: aiResp.TokensUsed,
		Model:      aiResp.Model,
	}, nil
}

// recentLog gathers commit subjects for context. Failures only reduce context.
func (uc *LearnMicroagentUseCase) recentLog(ctx context.Context, repo *domain.Repository, branch string) []string {
	if !repo.IsLocal() || uc.gitOps == nil {
		return nil
	}

	count := 10
	if uc.apiKey != nil {
		count = uc.apiKey.ContextCommits()
	}

	commits, err := uc.gitOps.GetLog(ctx, repo.Path(), branch, count)
	if err != nil {
		slog.Debug("no commit context", "repo", repo.ID(), "branch", branch, "err", err)
		return nil
	}

	subjects := make([]string, 0, len(commits))
	for _, c := range commits {
		subjects = append(subjects, c.Message)
	}
	return subjects
}

// outputDir is <repo>/<microagent_dir> for local repositories and
// <output_dir>/<owner>/<repo> for GitHub ones.
func (uc *LearnMicroagentUseCase) outputDir(repo *domain.Repository) (string, error) {
	if repo.IsLocal() {
		if filepath.IsAbs(uc.cfg.MicroagentDir) {
			return uc.cfg.MicroagentDir, nil
		}
		return filepath.Join(repo.Path(), uc.cfg.MicroagentDir), nil
	}

	if strings.TrimSpace(uc.cfg.OutputDir) == "" {
		return "", errors.New("learn.output_dir must be set to learn from remote repositories")
	}
	return filepath.Join(uc.cfg.OutputDir, filepath.FromSlash(repo.FullName())), nil
}

// writeMicroagent writes the markdown file, picking name-2.md, name-3.md, ...
// when the file exists and overwriting is disabled.
func writeMicroagent(dir string, m *domain.Microagent, overwrite bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, m.FileName())
	if !overwrite {
		base := strings.TrimSuffix(m.FileName(), ".md")
		for i := 2; fileExists(path); i++ {
			path = filepath.Join(dir, fmt.Sprintf("%s-%d.md", base, i))
		}
	}

	if err := os.WriteFile(path, []byte(m.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("failed to write microagent: %w", err)
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (uc *LearnMicroagentUseCase) record(ctx context.Context, repo *domain.Repository, form domain.MicroagentFormData) string {
	if uc.history == nil {
		return ""
	}
	id, err := uc.history.Record(ctx, domain.NewHistoryEntry(repo, form))
	if err != nil {
		slog.Warn("failed to record history", "repo", repo.ID(), "err", err)
		return ""
	}
	return id
}

func (uc *LearnMicroagentUseCase) fail(ctx context.Context, id string, cause error) {
	if uc.history == nil || id == "" {
		return
	}
	// The request context may already be canceled
	if err := uc.history.Fail(context.WithoutCancel(ctx), id, cause); err != nil {
		slog.Warn("failed to update history", "history_id", id, "err", err)
	}
}
