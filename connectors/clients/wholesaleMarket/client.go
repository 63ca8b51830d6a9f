package wholesalemarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/auth"
	"github.com/FilipeDoria/genetic-load-manager/connectors"
)

// Overridable in tests.
var wholesaleBaseURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges?start_date=%s&end_date=%s"

// Client queries the RTE wholesale market API for day-ahead prices.
type Client struct {
	startDate time.Time
	endDate   time.Time
}

// Fetch retrieves the France power exchange prices for the configured date
// range. Exactly two options are required: WithStartDate and WithEndDate.
func (w *Client) Fetch(ctx context.Context, authClient auth.HeaderSetter, opts ...connectors.Option) (connectors.Response, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	if len(opts) != 2 {
		return nil, fmt.Errorf("missing options: %d are set", len(opts))
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	url := fmt.Sprintf(wholesaleBaseURL, w.startDate.Format(time.RFC3339), w.endDate.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := authClient.SetAuthHeader(req); err != nil {
		return nil, fmt.Errorf("failed to set auth header: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var marketResponse Response
	if err := json.NewDecoder(resp.Body).Decode(&marketResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &marketResponse, nil
}
