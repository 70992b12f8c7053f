package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"focustrack/internal"
	"focustrack/ports"
)

// Config holds settings for the OpenAI-backed classifier
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// availabilityTTL bounds how long a probe result is trusted. The engine is
// expected to call Available once per categorization attempt, not per
// sample, so a short cache keeps a flaky network from causing a probe storm.
const availabilityTTL = 5 * time.Minute

// OpenAIClassifier implements the Classifier port against the OpenAI chat
// completions API. Absence of a result is not an error: transport failures,
// timeouts and malformed payloads all surface as a nil result.
type OpenAIClassifier struct {
	config Config
	client *http.Client
	logger *internal.Logger

	mu        sync.Mutex
	available bool
	probedAt  time.Time
}

// NewOpenAIClassifier creates a classifier from config
func NewOpenAIClassifier(config Config, logger *internal.Logger) *OpenAIClassifier {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &OpenAIClassifier{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Available probes whether the classifier can be called at all. The result
// is cached; the API is re-probed only after the cache expires.
func (c *OpenAIClassifier) Available(ctx context.Context) bool {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.probedAt) < availabilityTTL {
		return c.available
	}

	c.available = c.probe(ctx)
	c.probedAt = time.Now()
	return c.available
}

func (c *OpenAIClassifier) probe(ctx context.Context) bool {
	url := strings.TrimRight(c.config.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("classifier availability probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Classify asks the model to pick one of the known projects for a sample.
// Returns (nil, nil) when the model declines or replies with something
// unparseable.
func (c *OpenAIClassifier) Classify(ctx context.Context, classifyReq ports.ClassifyRequest) (*ports.ClassifyResult, error) {
	if len(classifyReq.Projects) == 0 {
		return nil, nil
	}

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type responseFormat struct {
		Type string `json:"type"`
	}
	type requestBody struct {
		Model          string         `json:"model"`
		Messages       []message      `json:"messages"`
		Temperature    float64        `json:"temperature,omitempty"`
		ResponseFormat responseFormat `json:"response_format"`
	}

	body := requestBody{
		Model: c.config.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(classifyReq)},
		},
		Temperature:    c.config.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("classifier request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("classifier http %d: %s", resp.StatusCode, string(respRaw))
		return nil, nil
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type envelope struct {
		Choices []choice `json:"choices"`
	}
	var decoded envelope
	if err := json.Unmarshal(respRaw, &decoded); err != nil || len(decoded.Choices) == 0 {
		c.logger.Warn("classifier returned an unreadable envelope")
		return nil, nil
	}

	content := cleanJSONContent(decoded.Choices[0].Message.Content)

	var result ports.ClassifyResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		c.logger.Warn("classifier returned malformed JSON: %v", err)
		return nil, nil
	}
	if strings.TrimSpace(result.Project) == "" {
		return nil, nil
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return &result, nil
}

const systemPrompt = "You categorize desktop activity into user-defined projects. " +
	"Respond with JSON only: {\"project\": \"<name from the list>\", \"confidence\": <0.0-1.0>}. " +
	"Pick the single best matching project. If nothing fits, use an empty project name."

func buildPrompt(req ports.ClassifyRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Application: %s\n", req.AppName)
	if req.WindowTitle != "" {
		fmt.Fprintf(&b, "Window title: %s\n", req.WindowTitle)
	}
	if req.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", req.URL)
	}
	fmt.Fprintf(&b, "Known projects: %s\n", strings.Join(req.Projects, ", "))
	return b.String()
}

// cleanJSONContent strips markdown fences and chatter some models wrap
// around JSON payloads.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Some models prepend a line of prose before the object.
	if !strings.HasPrefix(content, "{") {
		if idx := strings.Index(content, "{"); idx >= 0 {
			content = content[idx:]
		}
	}

	return content
}
