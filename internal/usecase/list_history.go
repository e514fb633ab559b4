package usecase

import (
	"context"
	"fmt"

	"github.com/yourusername/mlearn/internal/domain"
)

// HistoryLister reads recorded learn requests, newest first.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// ListHistoryUseCase lists past learn requests.
type ListHistoryUseCase struct {
	store HistoryLister
}

// NewListHistoryUseCase creates a new ListHistoryUseCase.
func NewListHistoryUseCase(store HistoryLister) *ListHistoryUseCase {
	return &ListHistoryUseCase{store: store}
}

// Execute returns up to limit entries. When repoID is set only that
// repository's entries are returned.
func (uc *ListHistoryUseCase) Execute(ctx context.Context, repoID string, limit int) ([]domain.HistoryEntry, error) {
	fetch := limit
	if repoID != "" {
		fetch = 0 // filter before limiting
	}

	entries, err := uc.store.List(ctx, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if repoID == "" {
		return entries, nil
	}

	filtered := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.RepoID != repoID {
			continue
		}
		filtered = append(filtered, e)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}
