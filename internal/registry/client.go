package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
)

const (
	headerClientID = "X-Client-ID"
	clientID       = "qualis"
)

// Client fetches questionnaire catalogues from the study backend.
type Client interface {
	GetQuestionnaire(ctx context.Context, key string) (*questionnaire.Catalogue, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetQuestionnaire downloads and validates one catalogue. The result is
// immutable and safe to share with the scoring engine.
func (c *HTTPClient) GetQuestionnaire(ctx context.Context, key string) (*questionnaire.Catalogue, error) {
	endpoint := c.baseURL + "/api/v1/questionnaires/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerClientID, clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("registry: %d %s", resp.StatusCode, string(body))
	}

	catalogue, err := questionnaire.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", key, err)
	}
	return catalogue, nil
}
