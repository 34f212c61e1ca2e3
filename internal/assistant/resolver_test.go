package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/models"
	"github.com/mkovalyov/focusaid/internal/utils"
)

type fakeDoer struct {
	status   int
	body     string
	err      error
	requests []*http.Request
	payloads []chatAPIRequest
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		var payload chatAPIRequest
		_ = json.Unmarshal(raw, &payload)
		f.payloads = append(f.payloads, payload)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
	}, nil
}

func newTestResolver(apiKey string, doer httpDoer) *Resolver {
	r := NewResolver(utils.OpenAIConfig{APIKey: apiKey}, zap.NewNop())
	if doer != nil {
		r.client = doer
	}
	return r
}

func userTurn(content string) []models.Message {
	return []models.Message{{Role: "user", Content: content}}
}

func TestResolveWithoutCredentialIsPureFallback(t *testing.T) {
	r := newTestResolver("", nil)

	history := userTurn("I feel overwhelmed")
	got := r.Resolve(context.Background(), history)

	if got.Role != "assistant" {
		t.Fatalf("expected assistant role, got %q", got.Role)
	}
	if got.Content != Classify("I feel overwhelmed") {
		t.Fatalf("expected classifier output, got %q", got.Content)
	}
	if got.Content != overwhelmReply {
		t.Fatalf("expected overwhelm advice, got %q", got.Content)
	}
}

func TestResolveWithoutCredentialIgnoresNonUserTail(t *testing.T) {
	r := newTestResolver("", nil)

	history := []models.Message{
		{Role: "user", Content: "I have a task"},
		{Role: "assistant", Content: taskBreakdownReply},
	}
	got := r.Resolve(context.Background(), history)

	// Last entry is not a user turn, so the classifier sees an empty string.
	if got.Content != clarifyReply {
		t.Fatalf("expected clarification reply, got %q", got.Content)
	}
}

func TestResolveSuccessReturnsFirstChoiceVerbatim(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusOK,
		body: `{"choices":[{"index":0,"message":{"role":"assistant","content":"Here is a plan."},"finish_reason":"stop"},` +
			`{"index":1,"message":{"role":"assistant","content":"Ignored."},"finish_reason":"stop"}]}`,
	}
	r := newTestResolver("sk-test", doer)

	got := r.Resolve(context.Background(), userTurn("help me plan"))
	if got.Role != "assistant" || got.Content != "Here is a plan." {
		t.Fatalf("unexpected reply: %+v", got)
	}

	if len(doer.payloads) != 1 {
		t.Fatalf("expected exactly one outbound call, got %d", len(doer.payloads))
	}
	payload := doer.payloads[0]
	if payload.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model %q", payload.Model)
	}
	if payload.Temperature != 0.7 {
		t.Fatalf("unexpected temperature %v", payload.Temperature)
	}
	if payload.MaxTokens != 1000 {
		t.Fatalf("unexpected max_tokens %d", payload.MaxTokens)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Content != "help me plan" {
		t.Fatalf("expected full history forwarded, got %+v", payload.Messages)
	}

	req := doer.requests[0]
	if req.Header.Get("Authorization") != "Bearer sk-test" {
		t.Fatalf("missing bearer auth, got %q", req.Header.Get("Authorization"))
	}
	if !strings.HasSuffix(req.URL.String(), "/chat/completions") {
		t.Fatalf("unexpected endpoint %q", req.URL.String())
	}
}

func TestResolveQuotaErrorComposesFallback(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusTooManyRequests,
		body:   `{"error":{"code":"insufficient_quota","message":"You exceeded your current quota."}}`,
	}
	r := newTestResolver("sk-test", doer)

	got := r.Resolve(context.Background(), userTurn("I can't focus"))

	if got.Role != "assistant" {
		t.Fatalf("expected assistant role, got %q", got.Role)
	}
	if !strings.HasPrefix(got.Content, quotaApologyPrefix) {
		t.Fatalf("expected quota apology prefix, got %q", got.Content)
	}
	if !strings.HasSuffix(got.Content, focusReply) {
		t.Fatalf("expected classifier output appended, got %q", got.Content)
	}
}

func TestResolveNonQuotaErrorReturnsConnectivityMessage(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusInternalServerError,
		body:   `{"error":{"message":"upstream exploded"}}`,
	}
	r := newTestResolver("sk-test", doer)

	got := r.Resolve(context.Background(), userTurn("hello"))

	if got.Content != connectivityReply {
		t.Fatalf("expected connectivity message without fallback, got %q", got.Content)
	}
}

func TestResolveTransportErrorComposesFallback(t *testing.T) {
	doer := &fakeDoer{err: errors.New("dial tcp: connection refused")}
	r := newTestResolver("sk-test", doer)

	got := r.Resolve(context.Background(), userTurn("I forgot my keys"))

	if !strings.HasPrefix(got.Content, errorPrefix) {
		t.Fatalf("expected error prefix, got %q", got.Content)
	}
	if !strings.HasSuffix(got.Content, memoryReply) {
		t.Fatalf("expected classifier output appended, got %q", got.Content)
	}
}

func TestResolveMalformedSuccessBodyComposesFallback(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "definitely not json"},
		{"no choices", `{"choices":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doer := &fakeDoer{status: http.StatusOK, body: tc.body}
			r := newTestResolver("sk-test", doer)

			got := r.Resolve(context.Background(), userTurn("hello"))
			if !strings.HasPrefix(got.Content, errorPrefix) {
				t.Fatalf("expected error prefix, got %q", got.Content)
			}
			if !strings.HasSuffix(got.Content, greetingReply) {
				t.Fatalf("expected greeting fallback, got %q", got.Content)
			}
		})
	}
}

func TestResolveNeverReturnsEmptyOnFailure(t *testing.T) {
	doers := []*fakeDoer{
		{err: errors.New("timeout")},
		{status: http.StatusBadGateway, body: ""},
		{status: http.StatusOK, body: "{}"},
	}
	for _, doer := range doers {
		r := newTestResolver("sk-test", doer)
		got := r.Resolve(context.Background(), userTurn("anything at all?"))
		if got.Role != "assistant" || got.Content == "" {
			t.Fatalf("expected non-empty assistant message, got %+v", got)
		}
	}
}
