package oli

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// pollResultLink fetches a result link until the job reaches a terminal
// state with a non-empty payload, sleeping interval between attempts.
//
// A PROCESSED or FAILED response with an empty payload is treated as not
// yet terminal and polling continues; the service populates data slightly
// after flipping the status.
func (c *Client) pollResultLink(ctx context.Context, link string, headers map[string]string, maxAttempts int, interval time.Duration) (Status, map[string]any, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := c.do(ctx, "poll", "GET", link, headers, nil, nil)
		if err != nil {
			return "", nil, err
		}

		raw, ok := body["status"].(string)
		if !ok {
			return "", nil, fmt.Errorf("poll: %w: missing status marker", ErrUnexpectedResponse)
		}
		status := Status(raw)
		if !slices.Contains(pollStatuses, status) {
			return "", nil, fmt.Errorf("poll: %w: unknown status %q", ErrUnexpectedResponse, raw)
		}

		c.logger.Debug("polling result link", "status", status, "attempt", attempt+1)

		if status == StatusProcessed || status == StatusFailed {
			if data, ok := body["data"].(map[string]any); ok && len(data) > 0 {
				return status, data, nil
			}
		}

		if err := sleep(ctx, interval); err != nil {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("%w after %d attempts", ErrPollTimeout, maxAttempts)
}
