package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/rephrase/pkg/llm"
)

// completer performs OpenAI-compatible chat-completion calls. Providers embed it
// and differ only in the request they build.
type completer struct {
	name       string
	baseURL    string
	apiKey     string
	envVar     string
	httpClient *http.Client
}

// complete posts req to {baseURL}/chat/completions and returns the first choice's content.
func (c *completer) complete(ctx context.Context, req *llm.ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", &MissingCredentialError{Provider: c.name, EnvVar: c.envVar}
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Provider: c.name, Err: fmt.Errorf("do request: %w", err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: c.name, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &UpstreamError{
			Provider:   c.name,
			StatusCode: httpResp.StatusCode,
			Details:    rawDetails(body),
			Err:        errors.New(upstreamMessage(body, httpResp.Status)),
		}
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &UpstreamError{
			Provider:   c.name,
			StatusCode: httpResp.StatusCode,
			Details:    rawDetails(body),
			Err:        fmt.Errorf("unmarshal response: %w", err),
		}
	}

	content, ok := resp.FirstContent()
	if !ok {
		return "", &UpstreamError{
			Provider:   c.name,
			StatusCode: httpResp.StatusCode,
			Details:    rawDetails(body),
			Err:        errors.New("response has no choices"),
		}
	}

	return content, nil
}

// upstreamMessage extracts the provider's error message, falling back to the HTTP status text.
func upstreamMessage(body []byte, status string) string {
	var apiErr llm.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return status
}
