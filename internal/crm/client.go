package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agentdesk/internal"
	"agentdesk/internal/config"
)

// Client talks to the hosted agency CRM's bulk-insert endpoint. Inserted
// records belong to the authenticated agent; authorization and server-side
// validation are the CRM's concern.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type insertResult struct {
	Inserted *int `json:"inserted"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AgencyTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.AgencyRateLimitRPS),
	}
}

// BulkInsert posts one batch of flat records to the configured table.
// Retries transient statuses with backoff; a batch that exhausts retries is
// one failed batch to the committer, nothing more.
func (c *Client) BulkInsert(ctx context.Context, records []internal.ApplicationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if strings.TrimSpace(c.cfg.AgencyAPIToken) == "" {
		return 0, errors.New("missing AGENCY_API_TOKEN")
	}

	endpoint, err := c.endpointURL()
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.AgencyAPIToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("agency api status %d", resp.StatusCode)
				continue
			}
			return 0, fmt.Errorf("agency api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return 0, err
		}
		if !apiResp.Success {
			return 0, fmt.Errorf("agency api rejected insert: %s", rejectionDetail(apiResp))
		}

		var result insertResult
		if len(apiResp.Data) > 0 {
			_ = json.Unmarshal(apiResp.Data, &result)
		}
		if result.Inserted != nil {
			return *result.Inserted, nil
		}
		return len(records), nil
	}

	if lastErr == nil {
		lastErr = errors.New("agency api request failed")
	}
	return 0, lastErr
}

func (c *Client) endpointURL() (string, error) {
	base := strings.TrimRight(c.cfg.AgencyAPIBaseURL, "/")
	u, err := url.Parse(base + "/" + strings.Trim(c.cfg.AgencyAPITable, "/") + "/bulk")
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func rejectionDetail(resp apiResponse) string {
	if len(resp.Errors) > 0 && string(resp.Errors) != "null" {
		return string(resp.Errors)
	}
	if resp.Message != "" {
		return resp.Message
	}
	return "no detail"
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
