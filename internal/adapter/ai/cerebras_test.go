package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/yourusername/mlearn/internal/domain"
)

func testKey(t *testing.T) *domain.APIKey {
	t.Helper()
	key, err := domain.NewAPIKey("csk-test-key", "cerebras")
	if err != nil {
		t.Fatalf("NewAPIKey() error = %v", err)
	}
	key.SetTier(domain.TierFree)
	return key
}

func testRepo(t *testing.T) *domain.Repository {
	t.Helper()
	repo, err := domain.NewGitHubRepository("acme/widgets")
	if err != nil {
		t.Fatalf("NewGitHubRepository() error = %v", err)
	}
	return repo
}

// completionBody wraps structured output the way the chat completions API does.
func completionBody(t *testing.T, output any) string {
	t.Helper()
	content, err := json.Marshal(output)
	if err != nil {
		t.Fatalf("marshal output: %v", err)
	}
	resp := map[string]any{
		"id":    "cmpl-1",
		"model": "llama-3.3-70b",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": string(content)}},
		},
		"usage": map[string]int{"total_tokens": 321},
	}
	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(body)
}

func newTestProvider(t *testing.T, url string, retries int) *CerebrasProvider {
	t.Helper()
	p := NewCerebrasProvider(testKey(t), ProviderConfig{BaseURL: url, MaxRetries: retries})
	p.backoffBase = time.Millisecond
	return p
}

func TestCerebrasProvider_GenerateMicroagent(t *testing.T) {
	var gotReq cerebrasRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, completionBody(t, map[string]any{
			"name":     "Release Process",
			"type":     "knowledge",
			"triggers": []string{"release", "tag"},
			"content":  "1. Bump the version\n2. Tag the commit",
		}))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 1)
	resp, err := p.GenerateMicroagent(context.Background(), MicroagentRequest{
		Repository: testRepo(t),
		Query:      "How do I cut a release?",
		Branch:     "main",
		RecentLog:  []string{"chore: bump version"},
		APIKey:     testKey(t),
	})
	if err != nil {
		t.Fatalf("GenerateMicroagent() error = %v", err)
	}

	if gotAuth != "Bearer csk-test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	prompt := gotReq.Messages[0].Content
	for _, want := range []string{"acme/widgets", "Branch: main", "chore: bump version", "How do I cut a release?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.JSONSchema.Name != "microagent" {
		t.Error("request should use the microagent JSON schema")
	}
	if gotReq.MaxCompletionTokens != 1500 {
		t.Errorf("MaxCompletionTokens = %d, want free tier 1500", gotReq.MaxCompletionTokens)
	}

	m := resp.Microagent
	if m.Name() != "Release Process" || m.Kind() != domain.MicroagentKnowledge {
		t.Errorf("microagent = %s/%s", m.Name(), m.Kind())
	}
	if len(m.Triggers()) != 2 {
		t.Errorf("Triggers() = %v", m.Triggers())
	}
	if resp.TokensUsed != 321 {
		t.Errorf("TokensUsed = %d, want 321", resp.TokensUsed)
	}
}

func TestCerebrasProvider_GenerateMicroagent_Validation(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:0", 0)

	_, err := p.GenerateMicroagent(context.Background(), MicroagentRequest{Query: "q"})
	if !errors.Is(err, domain.ErrNoRepository) {
		t.Errorf("nil repository error = %v, want ErrNoRepository", err)
	}

	_, err = p.GenerateMicroagent(context.Background(), MicroagentRequest{Repository: testRepo(t), Query: "  "})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("blank query error = %v, want ErrEmptyQuery", err)
	}
}

func TestCerebrasProvider_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"overloaded"}}`)
			return
		}
		fmt.Fprint(w, completionBody(t, map[string]any{
			"name": "build", "type": "repo", "triggers": []string{}, "content": "Run make.",
		}))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 3)
	resp, err := p.GenerateMicroagent(context.Background(), MicroagentRequest{Repository: testRepo(t), Query: "build?"})
	if err != nil {
		t.Fatalf("GenerateMicroagent() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if resp.Microagent.Kind() != domain.MicroagentRepo {
		t.Errorf("Kind() = %s, want repo", resp.Microagent.Kind())
	}
}

func TestCerebrasProvider_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 2)
	_, err := p.GenerateMicroagent(context.Background(), MicroagentRequest{Repository: testRepo(t), Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %v, want failure after 3 attempts", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestCerebrasProvider_RateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 3)
	_, err := p.GenerateMicroagent(context.Background(), MicroagentRequest{Repository: testRepo(t), Query: "q"})

	var limitErr *FreeTierLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want FreeTierLimitError", err)
	}
	if limitErr.Message != "slow down" {
		t.Errorf("Message = %q", limitErr.Message)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("rate limits should not be retried, calls = %d", got)
	}
}

func TestParseMicroagent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKind domain.MicroagentKind
		wantErr  bool
	}{
		{"repo", `{"name":"style","type":"repo","triggers":[],"content":"Use gofmt."}`, domain.MicroagentRepo, false},
		{"knowledge without triggers becomes repo", `{"name":"style","type":"knowledge","triggers":[],"content":"x"}`, domain.MicroagentRepo, false},
		{"missing content", `{"name":"style","type":"repo","triggers":[],"content":""}`, "", true},
		{"not json", `sure, here it is`, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &cerebrasResponse{Choices: []choice{{Message: message{Content: tt.content}}}}
			m, err := parseMicroagent(resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMicroagent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && m.Kind() != tt.wantKind {
				t.Errorf("Kind() = %s, want %s", m.Kind(), tt.wantKind)
			}
		})
	}

	if _, err := parseMicroagent(&cerebrasResponse{}); err == nil {
		t.Error("parseMicroagent() with no choices should return error")
	}
}

func TestTruncateQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		limit     int
		wantRunes int
	}{
		{"short ascii", "how do releases work?", 2000, 21},
		{"long ascii", strings.Repeat("a", 2100), 2000, 2000},
		{"multibyte at boundary", strings.Repeat("é", 2001), 2000, 2000},
		{"cjk", strings.Repeat("发布", 5), 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateQuery(tt.query, tt.limit)
			if !utf8.ValidString(got) {
				t.Fatalf("truncateQuery() returned invalid UTF-8: %q", got)
			}
			if n := utf8.RuneCountInString(got); n != tt.wantRunes {
				t.Errorf("truncateQuery() kept %d runes, want %d", n, tt.wantRunes)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &apiError{StatusCode: 502}, true},
		{"client error", &apiError{StatusCode: 400}, false},
		{"canceled", fmt.Errorf("request failed: %w", context.Canceled), false},
		{"timeout text", errors.New("i/o timeout"), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	p, err := f.Create("cerebras", testKey(t), ProviderConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.GetName() != "cerebras" {
		t.Errorf("GetName() = %q", p.GetName())
	}

	_, err = f.Create("gpt", testKey(t), ProviderConfig{})
	var notFound *ProviderNotFoundError
	if !errors.As(err, &notFound) || notFound.ProviderName != "gpt" {
		t.Errorf("Create(unknown) error = %v, want ProviderNotFoundError", err)
	}
}
