package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/client"
)

const (
	// DefaultHuggingFaceURL is the hosted inference root.
	DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models"

	// DefaultHuggingFaceModel is the model behind the stock sentiment-analysis
	// pipeline.
	DefaultHuggingFaceModel = "distilbert-base-uncased-finetuned-sst-2-english"
)

// ErrMissingToken is returned when a hosted classifier has no credential.
var ErrMissingToken = errors.New("classifier token is required")

// HuggingFaceConfig configures the inference API adapter.
type HuggingFaceConfig struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration

	MaxAttempts    int
	InitialBackoff time.Duration
}

// HuggingFaceClassifier calls a text-classification model on the Hugging
// Face inference API.
type HuggingFaceClassifier struct {
	httpClient *http.Client
	config     HuggingFaceConfig
}

// NewHuggingFace creates the adapter.
func NewHuggingFace(cfg HuggingFaceConfig) (*HuggingFaceClassifier, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHuggingFaceModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &HuggingFaceClassifier{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}, nil
}

// Classify sends texts as one request. Server errors (including the 503
// returned while a model loads) are retried.
func (h *HuggingFaceClassifier) Classify(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{"inputs": texts})
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	endpoint := strings.TrimRight(h.config.BaseURL, "/") + "/" + h.config.Model

	var raw []byte
	policy := client.PolicyWith(h.config.MaxAttempts, h.config.InitialBackoff)
	err = client.Retry(ctx, policy, client.Classify, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return &client.APIError{ErrorClass: client.ErrorClassClient, Message: "build request", Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+h.config.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &client.APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: client.ClassifyStatus(resp.StatusCode, ""),
				Message:    strings.TrimSpace(string(msg)),
			}
		}

		raw, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("huggingface %s: %w", h.config.Model, err)
	}

	return decodeHuggingFace(raw)
}

// decodeHuggingFace accepts both response shapes: a list of label lists (one
// per input) or a flat list with one label per input. The highest score
// wins.
func decodeHuggingFace(raw []byte) ([]Result, error) {
	var nested [][]Result
	if err := json.Unmarshal(raw, &nested); err == nil {
		out := make([]Result, len(nested))
		for i, labels := range nested {
			if len(labels) == 0 {
				return nil, fmt.Errorf("huggingface: no labels for input %d", i)
			}
			out[i] = best(labels)
		}
		return out, nil
	}

	var flat []Result
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode huggingface response: %w", err)
	}
	return flat, nil
}

func best(labels []Result) Result {
	top := labels[0]
	for _, l := range labels[1:] {
		if l.Score > top.Score {
			top = l
		}
	}
	return top
}
