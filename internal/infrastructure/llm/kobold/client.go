package kobold

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// GenParams are the sampling parameters sent with every generation request.
type GenParams struct {
	Temperature float64
	TopP        float64
	TopK        int
	RepPen      float64
}

func DefaultGenParams() GenParams {
	return GenParams{
		Temperature: 0.05,
		TopP:        0.9,
		TopK:        40,
		RepPen:      1.1,
	}
}

// Client talks to a local KoboldCPP server. The model runs single-threaded
// on constrained hardware, so a rate limiter serializes request bursts
// instead of piling them onto the inference queue.
type Client struct {
	baseURL    string
	params     GenParams
	httpClient *http.Client
	limiter    *rate.Limiter
}

func New(baseURL string, params GenParams, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		params:     params,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

var stopSequences = []string{
	"\n\nHowever",
	"\n\nThis section",
	"\n\nNote:",
	chatMLEnd,
	"Not found in loaded manuals.",
}

// Generate renders the prompt to ChatML and requests a completion. Transport
// failures and timeouts surface as domain.ErrGenerationUnavailable; the
// client never retries on its own.
func (c *Client) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload := map[string]any{
		"prompt":        renderChatML(prompt.Messages),
		"max_length":    prompt.MaxLength,
		"temperature":   c.params.Temperature,
		"top_p":         c.params.TopP,
		"top_k":         c.params.TopK,
		"rep_pen":       c.params.RepPen,
		"stop_sequence": stopSequences,
	}

	var response struct {
		Results []struct {
			Text string `json:"text"`
		} `json:"results"`
	}
	if err := c.postJSON(ctx, "/api/v1/generate", payload, &response, "generate"); err != nil {
		return "", err
	}
	if len(response.Results) == 0 {
		return "", fmt.Errorf("generate: empty results from generation server")
	}
	return strings.TrimSpace(response.Results[0].Text), nil
}

// Status reports the loaded model name, or an error when the server is not
// reachable.
func (c *Client) Status(ctx context.Context) (string, error) {
	var response struct {
		Result string `json:"result"`
	}
	if err := c.getJSON(ctx, "/api/v1/model", &response, "model status"); err != nil {
		return "", err
	}
	return response.Result, nil
}
