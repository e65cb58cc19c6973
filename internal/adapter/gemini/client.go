// Package gemini provides an HTTP client for the Google
// generative-language API, with buffered and streaming generation.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/resilience"
)

// DefaultBaseURL is the public generative-language endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the generative-language API for a single model.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a Gemini client. An empty baseURL selects the public
// endpoint. The timeout bounds every upstream call, buffered or
// streaming; an upstream hang never blocks a request past it.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to buffered generation calls.
// Streaming calls are deliberately not routed through the breaker: once
// a stream is open, failures are reported in-band and never retried.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type contentPart struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) requestBody(prompt string) ([]byte, error) {
	return json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []contentPart{{Text: prompt}}}},
	})
}

// Generate produces one fully-buffered completion. The response's
// candidate text parts are concatenated in order.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var result string
	call := func() error {
		body, err := c.requestBody(prompt)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(data)))
		}

		var parsed generateResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("%w: unmarshal response: %v", domain.ErrUpstream, err)
		}
		if parsed.Error != nil {
			return fmt.Errorf("%w: api error %d: %s", domain.ErrUpstream, parsed.Error.Code, parsed.Error.Message)
		}

		var sb strings.Builder
		for _, cand := range parsed.Candidates {
			for _, part := range cand.Content.Parts {
				sb.WriteString(part.Text)
			}
		}
		result = sb.String()
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return "", err
		}
		return result, nil
	}
	if err := call(); err != nil {
		return "", err
	}
	return result, nil
}

// Stream opens an incremental completion. Text fragments are forwarded
// on the content channel in arrival order; at most one error is sent on
// the error channel. Both channels are closed when the stream ends.
func (c *Client) Stream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	contentChan := make(chan string, 64)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errChan)

		if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.httpClient.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
			defer cancel()
		}

		body, err := c.requestBody(prompt)
		if err != nil {
			errChan <- fmt.Errorf("marshal request: %w", err)
			return
		}

		url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			errChan <- fmt.Errorf("create request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errChan <- fmt.Errorf("%w: %v", domain.ErrUpstream, err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(data)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Error != nil {
				errChan <- fmt.Errorf("%w: api error %d: %s", domain.ErrUpstream, chunk.Error.Code, chunk.Error.Message)
				return
			}
			for _, cand := range chunk.Candidates {
				for _, part := range cand.Content.Parts {
					if part.Text == "" {
						continue
					}
					select {
					case contentChan <- part.Text:
					case <-ctx.Done():
						errChan <- ctx.Err()
						return
					}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			errChan <- fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
	}()

	return contentChan, errChan
}
