package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const feedWriteWait = 10 * time.Second

// FeedHandler streams a potluck's board over a websocket. The current board
// is sent on connect and again after every change.
type FeedHandler struct {
	store    *store.Store
	engine   *signup.Engine
	feed     signup.Subscriber
	upgrader websocket.Upgrader
}

// NewFeedHandler accepts connections from the given origins. Without origins
// only same-host connections are accepted.
func NewFeedHandler(s *store.Store, engine *signup.Engine, feed signup.Subscriber, origins []string) *FeedHandler {
	h := &FeedHandler{store: s, engine: engine, feed: feed}
	if len(origins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		}
	}
	return h
}

func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	potluck, err := h.store.GetPotluckBySlug(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		http.Error(w, "Potluck not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Clients only listen; reading notices when they go away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(b *signup.Board) {
		conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := conn.WriteJSON(boardView(b)); err != nil {
			cancel()
		}
	}

	logrus.WithField("potluck", potluck.Slug).Debug("feed client connected")
	h.engine.Watch(ctx, h.feed, *potluck, send)
}
