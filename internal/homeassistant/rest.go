package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/models"
)

const automationConfigPath = "/api/config/automation/config"

// maxResponseSize bounds REST response bodies.
const maxResponseSize = 4 * 1024 * 1024

// GetAutomation fetches the stored config of an automation.
func (c *Client) GetAutomation(ctx context.Context, id string) (*automation.Config, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrHubUnreachable, err)
	}

	var raw map[string]any

	if err := c.rest(ctx, http.MethodGet, id, nil, &raw); err != nil {
		return nil, err
	}

	return automation.ParseConfig(raw)
}

// SaveAutomation creates or replaces the automation with cfg.ID.
func (c *Client) SaveAutomation(ctx context.Context, cfg *automation.Config) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("%w: automation without id", models.ErrHubRequest)
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: encoding automation: %w", models.ErrHubRequest, err)
	}

	return c.rest(ctx, http.MethodPost, cfg.ID, body, nil)
}

// DeleteAutomation removes an automation.
func (c *Client) DeleteAutomation(ctx context.Context, id string) error {
	return c.rest(ctx, http.MethodDelete, id, nil, nil)
}

func (c *Client) rest(ctx context.Context, method, id string, body []byte, out any) error {
	if id == "" {
		return fmt.Errorf("%w: empty automation id", models.ErrHubRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.httpURL.JoinPath(automationConfigPath, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrHubRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrHubUnreachable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrHubUnreachable, err)
	}

	c.pr.Debugf("%s %s %s → %d", method, automationConfigPath, id, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", models.ErrAutomationNotFound, id)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: %s %s: %d %s", models.ErrHubRequest, method, id, resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %w", models.ErrHubRequest, id, err)
	}

	return nil
}
