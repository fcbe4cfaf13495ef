package stubapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/logx"
	"github.com/Khatrip009/MinalGems-website/internal/mqx"
)

// VisitorHandlers serves /visitors/identify and /visitors/event. Tracked
// events are fanned out to RabbitMQ when a publisher is configured.
type VisitorHandlers struct {
	store *Store
	mq    mqx.Publisher
	log   *zap.Logger
}

func NewVisitorHandlers(store *Store, mq mqx.Publisher) *VisitorHandlers {
	return &VisitorHandlers{store: store, mq: mq, log: logx.GetScope("visitors")}
}

type identifyBody struct {
	SessionID string         `json:"session_id"`
	Meta      map[string]any `json:"meta"`
}

// Identify godoc
// @Summary  Resolve a client session id to a server visitor id
// @Tags     visitors
// @Accept   json
// @Produce  json
// @Param    body body identifyBody true "session"
// @Success  200 {object} apix.IdentifyResponse
// @Router   /visitors/identify [post]
func (h *VisitorHandlers) Identify(c *fiber.Ctx) error {
	var body identifyBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.SessionID == "" {
		return BadRequest("session_id_required")
	}
	vid := h.store.IdentifyVisitor(body.SessionID)
	return OK(c, fiber.Map{"visitor_id": vid})
}

type trackEventBody struct {
	EventType string         `json:"event_type"`
	VisitorID string         `json:"visitor_id"`
	SessionID string         `json:"session_id"`
	Props     map[string]any `json:"event_props"`
}

// TrackEvent godoc
// @Summary  Record an analytics event
// @Tags     visitors
// @Accept   json
// @Produce  json
// @Param    body body trackEventBody true "event"
// @Success  200 {object} apix.TrackEventResponse
// @Router   /visitors/event [post]
func (h *VisitorHandlers) TrackEvent(c *fiber.Ctx) error {
	var body trackEventBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.EventType == "" {
		return BadRequest("event_type_required")
	}
	id := h.store.RecordEvent(VisitorEvent{
		VisitorID: body.VisitorID,
		SessionID: body.SessionID,
		EventType: body.EventType,
		Props:     body.Props,
	})

	if h.mq != nil {
		payload, _ := json.Marshal(body)
		if err := h.mq.Publish(c.UserContext(), "visitor."+body.EventType, payload); err != nil {
			h.log.Warn("mq publish failed", zap.Error(err))
		}
	}
	return OK(c, fiber.Map{"event_id": id, "visitor_id": body.VisitorID})
}

// MetricsSummary godoc
// @Summary  Public visitor traffic counters
// @Tags     visitors
// @Produce  json
// @Success  200 {object} apix.VisitorsMetricsResponse
// @Router   /analytics/visitors-metrics/summary [get]
func (h *VisitorHandlers) MetricsSummary(c *fiber.Ctx) error {
	return OK(c, fiber.Map{"metrics": h.store.VisitorsMetrics()})
}
