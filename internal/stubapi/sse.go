package stubapi

import (
	"bufio"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

type sseEvent struct {
	id    uint64
	topic string
	name  string
	data  string
}

type sseSubscriber struct {
	topics map[string]bool // empty set means all topics
	ch     chan sseEvent
}

// Hub fans server events out to connected SSE clients, filtered by topic.
// Slow subscribers are dropped rather than blocking the publisher.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	seq    uint64
	subs   map[uint64]*sseSubscriber
	log    *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]*sseSubscriber),
		log:  logx.GetScope("sse-hub"),
	}
}

func (h *Hub) subscribe(topics []string) (uint64, *sseSubscriber) {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = true
		}
	}
	sub := &sseSubscriber{topics: set, ch: make(chan sseEvent, 16)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.subs[h.nextID] = sub
	return h.nextID, sub
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Publish delivers one event to every subscriber interested in the topic.
func (h *Hub) Publish(topic, name, data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	ev := sseEvent{id: h.seq, topic: topic, name: name, data: data}
	for id, sub := range h.subs {
		if len(sub.topics) > 0 && !sub.topics[topic] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.log.Warn("dropping slow sse subscriber", zap.Uint64("id", id))
			close(sub.ch)
			delete(h.subs, id)
		}
	}
}

// Handler streams events to the client until it disconnects.
//
// Stream godoc
// @Summary  Server-sent events, optionally filtered by topics
// @Tags     events
// @Produce  text/event-stream
// @Param    topics query string false "comma-separated topic filter"
// @Router   /events/sse [get]
func (h *Hub) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var topics []string
		if raw := c.Query("topics"); raw != "" {
			topics = strings.Split(raw, ",")
		}
		id, sub := h.subscribe(topics)

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer h.unsubscribe(id)

			// comment line first so proxies flush headers immediately
			fmt.Fprint(w, ": connected\n\n")
			if w.Flush() != nil {
				return
			}

			keepalive := time.NewTicker(15 * time.Second)
			defer keepalive.Stop()

			for {
				select {
				case ev, ok := <-sub.ch:
					if !ok {
						return
					}
					fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.id, ev.name, ev.data)
				case <-keepalive.C:
					fmt.Fprint(w, ": keepalive\n\n")
				}
				if w.Flush() != nil {
					return
				}
			}
		}))
		return nil
	}
}
