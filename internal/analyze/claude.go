// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
)

// reviewPromptTmpl is the prompt sent to the Claude API for each bill. It
// instructs the model to return the fixed issue/references/explanation
// triple format and nothing else.
var reviewPromptTmpl = template.Must(template.New("review").Parse(`You are a legislative review assistant. Analyze the following bill text and identify potential conflicts with the United States Constitution or the state constitution.

For each potential issue, provide:
- issue: a short free-text summary of the potential constitutional conflict
- references: the constitutional provisions involved (article, section, or amendment)
- explanation: why the bill text may conflict with those provisions

Respond with a JSON object containing an "issues" array. Each element must have all three fields. If you find no potential issues, return an empty array. Do not include any text outside the JSON object.

Example response:
{"issues": [{"issue": "Compelled speech", "references": "First Amendment; Idaho Const. art. I, sec. 9", "explanation": "Section 2 requires private entities to display state-authored notices."}]}

Bill text:
{{.Text}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API to review one bill's text.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Review calls the Claude API with the review prompt for one bill.
// Transport and server-side failures are returned as retryable errors;
// malformed responses are structural.
func (c *ClaudeBackend) Review(ctx context.Context, billText string) (AIResponse, error) {
	prompt, err := renderPrompt(billText)
	if err != nil {
		return AIResponse{}, Structural(fmt.Errorf("rendering prompt: %w", err))
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return AIResponse{}, Structural(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return AIResponse{}, Structural(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return AIResponse{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
		// Rate limits and server errors are worth retrying; other
		// rejections are structural.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return AIResponse{}, err
		}
		return AIResponse{}, Structural(err)
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return AIResponse{}, Structural(fmt.Errorf("decoding Claude response: %w", err))
	}

	if len(cResp.Content) == 0 {
		return AIResponse{}, Structural(fmt.Errorf("Claude API returned empty content"))
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var aiResp AIResponse
		if err := json.Unmarshal([]byte(block.Text), &aiResp); err != nil {
			return AIResponse{}, Structural(fmt.Errorf("parsing AI response JSON: %w", err))
		}
		return aiResp, nil
	}

	return AIResponse{}, Structural(fmt.Errorf("no text content in Claude API response"))
}

// renderPrompt executes the review prompt template with the given bill text.
func renderPrompt(billText string) (string, error) {
	var buf bytes.Buffer
	if err := reviewPromptTmpl.Execute(&buf, struct{ Text string }{Text: billText}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
