package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/gateway/httpclient"
)

const baseRiskPath = "/api/v1/risk"

// BaseCalculatorClient calls the upstream base risk calculator.
type BaseCalculatorClient struct {
	baseURL  string
	client   *http.Client
	attempts int
	backoff  time.Duration
}

func NewBaseCalculatorClient(baseURL string, timeout time.Duration, attempts int) *BaseCalculatorClient {
	return &BaseCalculatorClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   httpclient.New(timeout),
		attempts: attempts,
		backoff:  100 * time.Millisecond,
	}
}

func (c *BaseCalculatorClient) Calculate(ctx context.Context, profile models.PatientProfile) (models.BaseRiskResult, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return models.BaseRiskResult{}, fmt.Errorf("encode profile: %w", err)
	}

	var result models.BaseRiskResult
	url := c.baseURL + baseRiskPath
	err = httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &httpclient.StatusError{URL: url, StatusCode: resp.StatusCode}
		}
		result = models.BaseRiskResult{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode base risk result: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.BaseRiskResult{}, fmt.Errorf("base risk calculator: %w", err)
	}
	return result, nil
}
