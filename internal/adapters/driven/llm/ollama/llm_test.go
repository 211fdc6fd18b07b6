package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL())
	assert.NoError(t, svc.Close())
}

func TestLLMService_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "mistral", req.Model)
		assert.Equal(t, 64, req.Options.NumPredict)
		assert.InDelta(t, 0.3, req.Options.Temperature, 1e-9)
		assert.Equal(t, []chatMessage{{Role: "system", Content: "s"}, {Role: "user", Content: "q"}}, req.Messages)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"answer"},"done":true}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"})

	text, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "q"},
	}, driven.GenerateOptions{MaxTokens: 64, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "answer", text)
}

func TestLLMService_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "prompt", req.Prompt)
		assert.Equal(t, []string{"\n\n"}, req.Options.Stop)
		_, _ = w.Write([]byte(`{"response":"done","done":true}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	text, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{StopWords: []string{"\n\n"}})

	require.NoError(t, err)
	assert.Equal(t, "done", text)
}

func TestLLMService_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3.2' not found"}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Chat(context.Background(), nil, driven.GenerateOptions{})
	assert.ErrorContains(t, err, "not found")

	_, err = svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "status 404")

	assert.Error(t, svc.Ping(context.Background()))
}

func TestLLMService_IncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"partial"},"done":false}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.GenerateOptions{})

	assert.ErrorContains(t, err, "incomplete response")
}

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no block", "Thirty days.", "Thirty days."},
		{"leading block", "<think>\nrefund policy says 30\n</think>\n\nThirty days.", "Thirty days."},
		{"whitespace before block", "  <think>x</think>Answer", "Answer"},
		{"unterminated", "<think>still thinking", "<think>still thinking"},
		{"block not leading", "Answer <think>x</think>", "Answer <think>x</think>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripThinking(tt.in))
		})
	}
}
