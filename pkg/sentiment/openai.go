package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const openAIPrompt = `You are a sentiment classifier. The user sends a JSON array of comments.
Reply with only a JSON array containing one object per comment, in the same order,
of the form {"label": "POSITIVE" or "NEGATIVE", "score": confidence between 0 and 1}.`

// OpenAIConfig configures the chat-completion classifier.
type OpenAIConfig struct {
	Token string
	Model string
	// BaseURL overrides the API root, e.g. for a compatible gateway.
	BaseURL string
}

// OpenAIClassifier labels comments with a chat completion model.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the adapter.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Classify asks the model for one label per text.
func (o *OpenAIClassifier) Classify(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAIPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(input)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai %s: %w", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai %s: empty response", o.model)
	}

	return decodeOpenAI(resp.Choices[0].Message.Content)
}

// decodeOpenAI parses the model's JSON array, tolerating a Markdown code
// fence around it. Labels are upper-cased.
func decodeOpenAI(content string) ([]Result, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			content = content[start : end+1]
		}
	}

	var results []Result
	if err := json.Unmarshal([]byte(content), &results); err != nil {
		return nil, fmt.Errorf("decode openai labels: %w", err)
	}
	for i := range results {
		results[i].Label = strings.ToUpper(results[i].Label)
	}
	return results, nil
}
