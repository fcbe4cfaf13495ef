// Package sse consumes the backend's server-push event stream
// (GET /events/sse), optionally scoped to named topics.
package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

// Message is one inbound server event.
type Message struct {
	ID    string
	Event string
	Data  string
}

// Handler receives each inbound message. It runs on the stream goroutine,
// so it must not block.
type Handler func(Message)

// Stream maintains one long-lived connection with automatic reconnect and
// exponential backoff.
type Stream struct {
	baseURL string // normalized "<host>/api"
	id      *identity.Store
	client  *http.Client
	log     *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a stream against the normalized API base.
func New(baseURL string, id *identity.Store) *Stream {
	return &Stream{
		baseURL: baseURL,
		id:      id,
		// no Timeout: the response body is read for the connection's lifetime
		client: &http.Client{},
		log:    logx.GetScope("sse"),
	}
}

// Connect opens the stream and dispatches messages to onMsg until Close or
// ctx cancellation. Connection drops reconnect with exponential backoff.
func (s *Stream) Connect(ctx context.Context, onMsg Handler, topics ...string) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		bo := backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(time.Second),
			backoff.WithMaxInterval(30*time.Second),
			backoff.WithMaxElapsedTime(0), // retry forever until closed
		)
		for {
			err := s.consume(ctx, onMsg, topics)
			if ctx.Err() != nil {
				return
			}
			wait := bo.NextBackOff()
			s.log.Warn("stream disconnected; reconnecting",
				zap.Error(err), zap.Duration("backoff", wait))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

// Close tears the connection down and waits for the goroutine to exit.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

func (s *Stream) streamURL(topics []string) string {
	u := s.baseURL + "/events/sse"
	if len(topics) > 0 {
		u += "?topics=" + url.QueryEscape(strings.Join(topics, ","))
	}
	return u
}

func (s *Stream) consume(ctx context.Context, onMsg Handler, topics []string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.streamURL(topics), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("x-visitor-id", s.id.RequestVisitorID())
	if tok := s.id.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("sse: unexpected status %d", res.StatusCode)
	}

	s.log.Info("stream connected", zap.Strings("topics", topics))

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var msg Message
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 || msg.Event != "" {
				msg.Data = strings.Join(data, "\n")
				onMsg(msg)
			}
			msg = Message{}
			data = nil
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "id:"):
			msg.ID = strings.TrimSpace(line[len("id:"):])
		case strings.HasPrefix(line, "event:"):
			msg.Event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("sse: stream closed by server")
}
