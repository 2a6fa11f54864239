package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Angabebr/shop-tools/comments"
)

func newTestClient(t *testing.T, reply string) (*Client, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  got.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: reply,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewClientWithConfig(cfg, "test-model"), &got
}

func TestDraftComments(t *testing.T) {
	reply := "```json\n[" +
		`{"name": "Sara", "title": "Great cream", "content": "Works fast."},` +
		`{"name": "", "title": "x", "content": "dropped"},` +
		`{"name": "Ali", "title": "Good", "content": "Would buy again."},` +
		`{"name": "Reza", "title": "Ok", "content": "Fine."}` +
		"]\n```"
	client, req := newTestClient(t, reply)

	got, err := client.DraftComments(context.Background(), DraftRequest{
		Product:  "Hair remover cream 110g",
		Count:    2,
		Language: "Persian",
	})
	require.NoError(t, err)
	assert.Equal(t, []comments.Comment{
		{Name: "Sara", Title: "Great cream", Content: "Works fast."},
		{Name: "Ali", Title: "Good", Content: "Would buy again."},
	}, got)

	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[1].Content, "Persian")
	assert.Contains(t, req.Messages[1].Content, "Hair remover cream 110g")
}

func TestDraftCommentsValidatesRequest(t *testing.T) {
	client, _ := newTestClient(t, "[]")

	_, err := client.DraftComments(context.Background(), DraftRequest{Product: "x", Count: 0})
	assert.Error(t, err)

	_, err = client.DraftComments(context.Background(), DraftRequest{Product: " ", Count: 1})
	assert.Error(t, err)
}

func TestDraftCommentsUnparseableReply(t *testing.T) {
	client, _ := newTestClient(t, "sorry, I cannot help with that")

	_, err := client.DraftComments(context.Background(), DraftRequest{Product: "x", Count: 1})
	assert.Error(t, err)
}

func TestParseCommentsWithSurroundingText(t *testing.T) {
	got, err := parseComments(`Here you go: [{"name":"A","title":"T","content":"C"}] enjoy`)
	require.NoError(t, err)
	assert.Equal(t, []comments.Comment{{Name: "A", Title: "T", Content: "C"}}, got)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "")
	assert.Error(t, err)
}
