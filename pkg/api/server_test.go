package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/recall-go/pkg/api"
	"github.com/mindhaven/recall-go/pkg/core"
	"github.com/mindhaven/recall-go/pkg/genai"
)

// stubProvider echoes a canned reply and records the messages it received.
type stubProvider struct {
	lastMessages []genai.Message
	reply        string
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts ...genai.GenerateOption) (string, error) {
	return p.GenerateWithMessages(ctx, []genai.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *stubProvider) GenerateWithMessages(ctx context.Context, messages []genai.Message, opts ...genai.GenerateOption) (string, error) {
	p.lastMessages = messages
	return p.reply, nil
}

func (p *stubProvider) Close() error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *core.AsyncClient, *stubProvider) {
	t.Helper()

	client, err := core.NewAsyncClient(&core.Config{
		Store: core.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": filepath.Join(t.TempDir(), "recall_api_test.db"),
			},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	provider := &stubProvider{reply: "That sounds really hard. Want to talk about it?"}
	server := api.NewServer(client, provider, "0", nil)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return ts, client, provider
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRememberEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/memories", api.RememberRequest{
		Content: "I feel anxious before exams",
		Tags:    []string{"mood"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var memory core.Memory
	decodeJSON(t, resp, &memory)
	assert.NotZero(t, memory.ID)
	assert.Equal(t, "user_001", memory.UserID)
	assert.Equal(t, "I feel anxious before exams", memory.Content)
}

func TestRememberRejectsEmptyContent(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/memories", api.RememberRequest{
		Content: "   ",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAndForgetEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)
	base := ts.URL + "/api/v1/users/user_001/memories"

	resp := postJSON(t, base, api.RememberRequest{Content: "I started a new job today"})
	var memory core.Memory
	decodeJSON(t, resp, &memory)

	resp, err := http.Get(base)
	require.NoError(t, err)
	var memories []*core.Memory
	decodeJSON(t, resp, &memories)
	require.Len(t, memories, 1)

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/%d", base, memory.ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Deleting again reports not found.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestForgetIsUserScoped(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/memories",
		api.RememberRequest{Content: "something private to user one"})
	var memory core.Memory
	decodeJSON(t, resp, &memory)

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/users/user_002/memories/%d", ts.URL, memory.ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestEraseAllEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)
	base := ts.URL + "/api/v1/users/user_001/memories"

	for _, content := range []string{"first entry today", "second entry today"} {
		resp := postJSON(t, base, api.RememberRequest{Content: content})
		_ = resp.Body.Close()
	}

	req, err := http.NewRequest(http.MethodDelete, base, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var erased api.EraseResponse
	decodeJSON(t, resp, &erased)
	assert.Equal(t, int64(2), erased.Deleted)
}

func TestEraseRejectsBadDayFormat(t *testing.T) {
	ts, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete,
		ts.URL+"/api/v1/users/user_001/memories?day=not-a-date", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRecallEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/memories",
		api.RememberRequest{Content: "I feel anxious before school exams"})
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/users/user_001/recall",
		api.RecallRequest{Query: "exams tomorrow"})
	var recalled api.RecallResponse
	decodeJSON(t, resp, &recalled)

	assert.Contains(t, recalled.Context, "I feel anxious before school exams")
	require.Len(t, recalled.Memories, 1)
	assert.Greater(t, recalled.Memories[0].Score, 0.0)
}

func TestRecallEndpointEmptyResult(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/recall",
		api.RecallRequest{Query: "anything at all"})
	var recalled api.RecallResponse
	decodeJSON(t, resp, &recalled)

	assert.Empty(t, recalled.Context)
	assert.Empty(t, recalled.Memories)
}

func TestChatInjectsMemoryContext(t *testing.T) {
	ts, client, provider := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/memories",
		api.RememberRequest{Content: "I feel anxious before school exams"})
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/users/user_001/chat",
		api.ChatRequest{Message: "My exams start tomorrow and I cannot sleep"})
	var chat api.ChatResponse
	decodeJSON(t, resp, &chat)

	assert.Equal(t, "That sounds really hard. Want to talk about it?", chat.Reply)
	assert.True(t, chat.ContextUsed)

	require.NotEmpty(t, provider.lastMessages)
	assert.Equal(t, "system", provider.lastMessages[0].Role)
	assert.Contains(t, provider.lastMessages[0].Content,
		"These are prioritized recollections about the user:")
	assert.Contains(t, provider.lastMessages[0].Content,
		"I feel anxious before school exams")

	// The significant user message is remembered off the response path.
	client.Wait()
	memories, err := client.GetAll(context.Background(),
		core.WithUserIDForGetAll("user_001"))
	require.NoError(t, err)
	assert.Len(t, memories, 2)
}

func TestChatWindowUsesUserTurnsOnly(t *testing.T) {
	ts, client, provider := newTestServer(t)
	ctx := context.Background()

	// Old and non-core: only conversation-window overlap could surface it.
	_, err := client.Remember(ctx, "breathing exercises help with panic",
		core.WithUserID("user_001"),
		core.WithCreatedAt(time.Now().AddDate(0, 0, -10)))
	require.NoError(t, err)

	history := []genai.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "Have you tried breathing exercises when the panic builds?"},
	}

	// The memory's vocabulary appears only in the assistant turn; it must
	// not feed the window and the memory must stay out of the prompt.
	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/chat",
		api.ChatRequest{Message: "lunch plans today?", History: history})
	var chat api.ChatResponse
	decodeJSON(t, resp, &chat)

	assert.False(t, chat.ContextUsed)
	require.NotEmpty(t, provider.lastMessages)
	assert.NotContains(t, provider.lastMessages[0].Content,
		"breathing exercises help with panic")

	// The same vocabulary in a prior user turn does feed the window.
	history[1] = genai.Message{Role: "user", Content: "the breathing exercises helped with the panic"}
	resp = postJSON(t, ts.URL+"/api/v1/users/user_001/chat",
		api.ChatRequest{Message: "lunch plans today?", History: history})
	decodeJSON(t, resp, &chat)

	assert.True(t, chat.ContextUsed)
	assert.Contains(t, provider.lastMessages[0].Content,
		"breathing exercises help with panic")
}

func TestChatWithoutRelevantMemories(t *testing.T) {
	ts, _, provider := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/chat",
		api.ChatRequest{Message: "hi"})
	var chat api.ChatResponse
	decodeJSON(t, resp, &chat)

	assert.False(t, chat.ContextUsed)
	require.NotEmpty(t, provider.lastMessages)
	assert.NotContains(t, provider.lastMessages[0].Content,
		"These are prioritized recollections about the user:")
}

func TestChatWithoutProvider(t *testing.T) {
	client, err := core.NewAsyncClient(&core.Config{
		Store: core.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": filepath.Join(t.TempDir(), "recall_noprov_test.db"),
			},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server := api.NewServer(client, nil, "0", nil)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/api/v1/users/user_001/chat",
		api.ChatRequest{Message: "hello there"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
