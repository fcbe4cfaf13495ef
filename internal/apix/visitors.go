package apix

import "context"

// VisitorsAPI performs the identify handshake and fire-and-forget analytics
// events. The session id travels until the backend mints a visitor UUID;
// after that both are sent.
type VisitorsAPI struct {
	c *Client
}

func NewVisitorsAPI(c *Client) *VisitorsAPI {
	return &VisitorsAPI{c: c}
}

// Identify upserts the visitor row for this session and persists the
// returned visitor id. Call once on startup; repeated calls are harmless.
func (a *VisitorsAPI) Identify(ctx context.Context, meta map[string]any) (string, error) {
	payload := map[string]any{"session_id": a.c.Identity().SessionID()}
	if meta != nil {
		payload["meta"] = meta
	}
	var out IdentifyResponse
	if err := a.c.Post(ctx, "/visitors/identify", payload, &out); err != nil {
		return "", err
	}
	a.c.Identity().SetVisitorID(out.VisitorID)
	return out.VisitorID, nil
}

// TrackEvent records an analytics event with the known visitor id when
// available, otherwise just the session id.
func (a *VisitorsAPI) TrackEvent(ctx context.Context, eventType string, props map[string]any) (*TrackEventResponse, error) {
	if err := requireID("event_type_required", eventType); err != nil {
		return nil, err
	}
	if props == nil {
		props = map[string]any{}
	}
	payload := map[string]any{
		"session_id":  a.c.Identity().SessionID(),
		"event_type":  eventType,
		"event_props": props,
	}
	if vid := a.c.Identity().VisitorID(); vid != "" {
		payload["visitor_id"] = vid
	}
	var out TrackEventResponse
	if err := a.c.Post(ctx, "/visitors/event", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VisitorsMetricsAPI reads the public traffic counters.
type VisitorsMetricsAPI struct {
	c *Client
}

func NewVisitorsMetricsAPI(c *Client) *VisitorsMetricsAPI {
	return &VisitorsMetricsAPI{c: c}
}

func (a *VisitorsMetricsAPI) Summary(ctx context.Context) (*VisitorsMetricsResponse, error) {
	var out VisitorsMetricsResponse
	if err := a.c.Get(ctx, "/analytics/visitors-metrics/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
