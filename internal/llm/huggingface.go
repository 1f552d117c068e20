package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HuggingFaceBackend implements Backend using the Hugging Face Inference API.
// The default model is a seq2seq text generator, so the same endpoint serves
// both classification prompts and rewrite prompts.
type HuggingFaceBackend struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewHuggingFaceBackend creates a new Hugging Face Inference API client.
func NewHuggingFaceBackend(apiKey, model string) *HuggingFaceBackend {
	return &HuggingFaceBackend{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		baseURL:    "https://api-inference.huggingface.co",
	}
}

// Hugging Face API request/response types
type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens  int      `json:"max_new_tokens,omitempty"`
	NumBeams      int      `json:"num_beams,omitempty"`
	DoSample      bool     `json:"do_sample"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	EarlyStopping bool     `json:"early_stopping,omitempty"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Load warms the hosted model. The Inference API spins models down when
// idle; a wait_for_model request blocks until weights are resident.
func (b *HuggingFaceBackend) Load(ctx context.Context) error {
	_, err := b.Generate(ctx, "ok", DecodingParams{
		Deterministic: true,
		MaxNewTokens:  1,
	})
	if err != nil {
		return fmt.Errorf("model warmup failed: %w", err)
	}
	return nil
}

// Generate sends a generation request to the Inference API.
func (b *HuggingFaceBackend) Generate(ctx context.Context, prompt string, params DecodingParams) (string, error) {
	reqBody := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:  params.MaxNewTokens,
			NumBeams:      params.NumBeams,
			DoSample:      !params.Deterministic,
			EarlyStopping: params.EarlyStopping,
		},
		Options: hfOptions{WaitForModel: true, UseCache: false},
	}
	if !params.Deterministic {
		reqBody.Parameters.Temperature = &params.Temperature
		reqBody.Parameters.TopP = &params.TopP
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", b.baseURL, b.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("inference API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("inference API error (%d): %s", resp.StatusCode, string(body))
	}

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("empty response from inference API")
	}

	return generations[0].GeneratedText, nil
}
