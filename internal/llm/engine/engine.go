package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// The engine throttles aggressively; stay below its documented ceiling.
const requestsPerSecond = 2

// Client for the image generation engine.
type Client struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient instantiates and returns a new client.
func NewClient(apiKey, apiHost string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateImagesRequest describes one generation call. Steps is on the
// engine's own scale, not the client scale.
type GenerateImagesRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Count  int    `json:"count"`
	Steps  int    `json:"steps"`
}

// Image is one generated image as returned by the engine.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type generateImagesResponse struct {
	Images []*Image `json:"images"`
	Error  string   `json:"error"`
}

// GenerateImages requests Count images for the given prompt and model.
func (c *Client) GenerateImages(ctx context.Context, request *GenerateImagesRequest) ([]*Image, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "waiting for rate limiter")
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiHost+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, errors.Wrap(err, "calling engine")
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	response := &generateImagesResponse{}
	if err := json.Unmarshal(responseBytes, response); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling response (status %d)", httpResponse.StatusCode)
	}
	if httpResponse.StatusCode != http.StatusOK {
		if response.Error != "" {
			return nil, errors.Errorf("engine returned %d: %s", httpResponse.StatusCode, response.Error)
		}
		return nil, errors.Errorf("engine returned %d", httpResponse.StatusCode)
	}
	return response.Images, nil
}
