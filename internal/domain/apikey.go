package domain

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// APIKeyEnvVar overrides the configured key when set.
const APIKeyEnvVar = "MLEARN_API_KEY"

// APITier is the plan an API key belongs to. It sizes learn requests.
type APITier string

const (
	TierUnknown APITier = ""
	TierFree    APITier = "free"
	TierPro     APITier = "pro"
)

func (t APITier) String() string {
	if t == TierUnknown {
		return "unknown"
	}
	return string(t)
}

// ParseAPITier parses the api_tier config value.
func ParseAPITier(s string) (APITier, error) {
	switch tier := APITier(strings.ToLower(strings.TrimSpace(s))); tier {
	case TierFree, TierPro:
		return tier, nil
	case "unknown":
		return TierUnknown, nil
	default:
		return TierUnknown, fmt.Errorf("invalid API tier: %s", s)
	}
}

// requestBudget bounds what a single learn request may send and receive.
type requestBudget struct {
	commits     int
	completions int
}

var (
	freeBudget = requestBudget{commits: 10, completions: 1500}
	fullBudget = requestBudget{commits: 40, completions: 4000}
)

// APIKey is a provider key plus the tier it was configured with.
type APIKey struct {
	key      string
	provider string
	tier     APITier
}

// NewAPIKey creates a key whose tier is not yet known.
func NewAPIKey(key, provider string) (*APIKey, error) {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return nil, errors.New("API key cannot be empty")
	case provider == "":
		return nil, errors.New("provider cannot be empty")
	}
	return &APIKey{key: key, provider: provider}, nil
}

// ResolveAPIKey prefers MLEARN_API_KEY over the configured key.
func ResolveAPIKey(configured string) string {
	if env := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); env != "" {
		return env
	}
	return strings.TrimSpace(configured)
}

func (a *APIKey) Key() string      { return a.key }
func (a *APIKey) Provider() string { return a.provider }
func (a *APIKey) Tier() APITier    { return a.tier }

func (a *APIKey) SetTier(tier APITier) { a.tier = tier }

// IsFree reports whether requests must fit the free tier limits.
func (a *APIKey) IsFree() bool {
	return a.tier == TierFree
}

func (a *APIKey) budget() requestBudget {
	if a.IsFree() {
		return freeBudget
	}
	return fullBudget
}

// ContextCommits is how many recent commits are sent along with a learn request.
func (a *APIKey) ContextCommits() int {
	return a.budget().commits
}

// MaxCompletionTokens caps the size of a generated microagent.
func (a *APIKey) MaxCompletionTokens() int {
	return a.budget().completions
}

// String masks all but the first four characters of the key.
func (a *APIKey) String() string {
	masked := "***"
	if len(a.key) > 4 {
		masked = a.key[:4] + masked
	}
	return fmt.Sprintf("APIKey{provider: %s, tier: %s, key: %s}", a.provider, a.tier, masked)
}
