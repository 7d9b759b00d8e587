package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) []byte {
	data, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-3.5-turbo",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return data
}

func TestNewOpenAI_RequiresToken(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestOpenAI_Classify(t *testing.T) {
	var userContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		userContent = req.Messages[len(req.Messages)-1].Content

		w.Header().Set("Content-Type", "application/json")
		w.Write(chatResponse("```json\n[{\"label\":\"positive\",\"score\":0.8},{\"label\":\"NEGATIVE\",\"score\":0.6}]\n```"))
	}))
	defer server.Close()

	o, err := NewOpenAI(OpenAIConfig{Token: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	results, err := o.Classify(context.Background(), []string{"nice", "awful"})
	require.NoError(t, err)
	assert.Equal(t, []Result{{"POSITIVE", 0.8}, {"NEGATIVE", 0.6}}, results)
	assert.Equal(t, `["nice","awful"]`, userContent)
}

func TestDecodeOpenAI_Garbage(t *testing.T) {
	_, err := decodeOpenAI("I cannot do that")
	assert.Error(t, err)
}
