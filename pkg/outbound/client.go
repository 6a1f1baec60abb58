package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("outbound", fx.Provide(NewClient))

// Client posts JSON payloads to side-effect endpoints (auto-response mailer,
// content generator, ads manager, supplier scraper, bank transfers). A non-2xx
// response is an error; retries are the caller's policy, not the client's.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// PostJSON sends the payload and decodes the response body into out when out
// is non-nil.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		zap.L().Warn("outbound request rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", b),
		)
		return fmt.Errorf("outbound request to %s failed with status %d", url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
