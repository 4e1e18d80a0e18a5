package backend

import (
	"context"
	"net/http"
	"strconv"

	"pkt.systems/agentdeck/schema"
)

// DesktopStatus probes the remote-desktop bridge.
func (c *Client) DesktopStatus(ctx context.Context) (schema.DesktopStatus, error) {
	var status schema.DesktopStatus
	if err := c.get(ctx, "/api/canvas/desktop/status", &status); err != nil {
		return schema.DesktopStatus{}, err
	}
	return status, nil
}

// StartDesktop asks the backend to start the remote-desktop bridge. The
// caller waits a fixed settle delay before loading the bridge URL; the
// backend does not signal readiness.
func (c *Client) StartDesktop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/canvas/desktop/start", nil, nil)
}

// CheckPort reports whether a port is listening on the backend host.
func (c *Client) CheckPort(ctx context.Context, port int) (bool, error) {
	var payload struct {
		Available bool `json:"available"`
	}
	route := "/api/canvas/check-port?port=" + strconv.Itoa(port)
	if err := c.get(ctx, route, &payload); err != nil {
		return false, err
	}
	return payload.Available, nil
}
