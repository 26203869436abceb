package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/theirongolddev/aurion/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

// Event carries one collection snapshot to stream and socket clients.
type Event struct {
	Type       string           `json:"type"`
	Collection model.Collection `json:"collection"`
	Version    int64            `json:"version"`
	Timestamp  time.Time        `json:"timestamp"`
	Records    any              `json:"records"`
}

func (s *Service) event(snap model.Snapshot) Event {
	return Event{
		Type:       "snapshot",
		Collection: snap.Collection,
		Version:    snap.Version,
		Timestamp:  s.now(),
		Records:    snap.Records(),
	}
}

// subscribeAll merges a subscription per collection into one channel. The
// subscriptions are released when ctx is done.
func (s *Service) subscribeAll(ctx context.Context) <-chan model.Snapshot {
	out := make(chan model.Snapshot, len(model.Collections))
	for _, col := range model.Collections {
		ch, unsubscribe := s.store.Subscribe(col)
		go func() {
			defer unsubscribe()
			for {
				select {
				case <-ctx.Done():
					return
				case snap, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- snap:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
	return out
}

func (s *Service) handleStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request.Context()
	snaps := s.subscribeAll(ctx)

	// Every collection's current snapshot arrives first.
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snaps:
			if err := writeSSE(w, s.event(snap)); err != nil {
				return
			}
			w.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Type); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func newMelody() *melody.Melody {
	m := melody.New()
	m.Config.MaxMessageSize = 4096
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(sess *melody.Session) {
		log.Debug().Str("remote", sess.Request.RemoteAddr).Msg("websocket client disconnected")
	})
	m.HandleError(func(sess *melody.Session, err error) {
		log.Warn().Err(err).Msg("websocket error")
	})
	return m
}

func (s *Service) handleWS(c *gin.Context) {
	if err := s.melody.HandleRequest(c.Writer, c.Request); err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
	}
}

// greet sends every collection's current snapshot to a new socket.
func (s *Service) greet(sess *melody.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, col := range model.Collections {
		snap, err := s.store.List(ctx, col)
		if err != nil {
			log.Error().Err(err).Str("collection", col.String()).Msg("websocket greeting")
			return
		}
		data, err := json.Marshal(s.event(snap))
		if err != nil {
			return
		}
		if err := sess.Write(data); err != nil {
			return
		}
	}
}

// broadcast pushes every snapshot to all connected sockets until ctx is done.
func (s *Service) broadcast(ctx context.Context) {
	snaps := s.subscribeAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snaps:
			data, err := json.Marshal(s.event(snap))
			if err != nil {
				continue
			}
			if err := s.melody.Broadcast(data); err != nil && !s.melody.IsClosed() {
				log.Warn().Err(err).Msg("websocket broadcast")
			}
		}
	}
}
