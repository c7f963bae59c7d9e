package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	srv     *httptest.Server
	calls atomic.Int32

	mu      sync.Mutex
	lastReq map[string]any
}

func (f *fakeLLM) request() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

// newFakeLLM serves /v1/chat/completions, answering with content as the
// assistant message (or status when non-200).
func newFakeLLM(t *testing.T, status int, content string) *fakeLLM {
	t.Helper()
	f := &fakeLLM{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastReq = body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeLLM) client() *Client {
	c := New(Options{APIKey: "test", BaseURL: f.srv.URL + "/v1", Model: "deepseek-chat"})
	c.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestAnalyzeSuccess(t *testing.T) {
	f := newFakeLLM(t, http.StatusOK,
		`{"title":"Dentist","description":"check-up","due_date":"2026-10-16","priority":2}`)

	d, err := f.client().Analyze(context.Background(), "dentist tomorrow, important")
	require.NoError(t, err)
	require.Equal(t, "Dentist", d.Title)
	require.Equal(t, "check-up", d.Description)
	require.NotNil(t, d.DueDate)
	require.Equal(t, "2026-10-16", *d.DueDate)
	require.Equal(t, PriorityImportant, d.Priority)

	require.EqualValues(t, 1, f.calls.Load())
	req := f.request()
	require.Equal(t, "deepseek-chat", req["model"])
	require.InDelta(t, 0.1, req["temperature"], 1e-6)
	require.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])

	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	sys := msgs[0].(map[string]any)
	require.Equal(t, "system", sys["role"])
	require.Contains(t, sys["content"], "2026-10-15")
	require.Equal(t, "dentist tomorrow, important", msgs[1].(map[string]any)["content"])
}

func TestAnalyzeNullDueDate(t *testing.T) {
	f := newFakeLLM(t, http.StatusOK, `{"title":"Read","description":"","due_date":null,"priority":1}`)

	d, err := f.client().Analyze(context.Background(), "read a book")
	require.NoError(t, err)
	require.Nil(t, d.DueDate)
}

func TestAnalyzeUnrecognized(t *testing.T) {
	f := newFakeLLM(t, http.StatusOK, `{"title":"unrecognized","description":"","due_date":null,"priority":1}`)

	before := testutil.ToFloat64(analyzeCount.WithLabelValues("unrecognized"))
	d, err := f.client().Analyze(context.Background(), "asdkjh qwe")
	require.NoError(t, err)
	require.Equal(t, Unrecognized, d.Title)
	require.Equal(t, before+1, testutil.ToFloat64(analyzeCount.WithLabelValues("unrecognized")))
}

func TestAnalyzeEmptyInputMakesNoCall(t *testing.T) {
	f := newFakeLLM(t, http.StatusOK, `{}`)

	_, err := f.client().Analyze(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Zero(t, f.calls.Load())
}

func TestAnalyzeFailures(t *testing.T) {
	cases := map[string]struct {
		status  int
		content string
	}{
		"server error":      {http.StatusInternalServerError, ""},
		"not json":          {http.StatusOK, "Sure! Here is your task."},
		"empty title":       {http.StatusOK, `{"title":"","priority":1}`},
		"priority too high": {http.StatusOK, `{"title":"x","priority":4}`},
		"priority missing":  {http.StatusOK, `{"title":"x"}`},
		"bad due date":      {http.StatusOK, `{"title":"x","priority":1,"due_date":"next week"}`},
		"priority as text":  {http.StatusOK, `{"title":"x","priority":"high"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFakeLLM(t, tc.status, tc.content)
			before := testutil.ToFloat64(analyzeCount.WithLabelValues("failure"))

			_, err := f.client().Analyze(context.Background(), "something")
			require.ErrorIs(t, err, ErrAnalysisFailed)
			require.Equal(t, before+1, testutil.ToFloat64(analyzeCount.WithLabelValues("failure")))
		})
	}
}

func TestAnalyzeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := c.Analyze(context.Background(), "task")
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC))
	require.Contains(t, p, "Today is 2026-01-31")
	require.Contains(t, p, `"`+Unrecognized+`"`)
	for _, key := range []string{"title", "description", "due_date", "priority"} {
		require.True(t, strings.Contains(p, `"`+key+`"`), key)
	}
}
