package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/metrics"
	"chatrelay/internal/models"
	"chatrelay/internal/preview"
)

const previewTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Handlers struct {
	log         *zap.Logger
	coordinator *chat.Coordinator
	fetcher     *preview.Fetcher
}

func NewHandlers(log *zap.Logger, coordinator *chat.Coordinator) *Handlers {
	return &Handlers{
		log:         log,
		coordinator: coordinator,
		fetcher:     preview.NewFetcher(),
	}
}

// ChatWS upgrades the connection and runs the per-session event loop. The
// transport guarantees ordered delivery per connection, so every mutation of
// this session happens from this loop; disconnect is an implicit leave.
func (h *Handlers) ChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := chat.NewClient(conn)
	metrics.SessionsConnected.Inc()
	defer metrics.SessionsConnected.Dec()
	defer h.coordinator.Leave(client)

	h.log.Info("session connected", zap.String("session", client.ID))
	defer h.log.Info("session disconnected", zap.String("session", client.ID))

	for {
		var f models.WSFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}

		switch f.Type {
		case models.EventJoinRoom:
			var req models.JoinRequest
			marshal(f.Data, &req)
			h.coordinator.Join(client, req.RoomID, req.Username)

		case models.EventChatMessage:
			content, _ := f.Data.(string)
			h.coordinator.SendChat(client, content)

		case models.EventTypingStart:
			h.coordinator.Typing(client, true)

		case models.EventTypingStop:
			h.coordinator.Typing(client, false)

		case models.EventEditMessage:
			var edit models.EditMessage
			marshal(f.Data, &edit)
			h.coordinator.EditMessage(client, edit)

		case models.EventDeleteMessage:
			var del models.DeleteMessage
			marshal(f.Data, &del)
			h.coordinator.DeleteMessage(client, del)

		case models.EventAIRequest:
			var transcript []models.TranscriptEntry
			marshal(f.Data, &transcript)
			h.coordinator.RequestAI(client, transcript)

		case models.EventLinkPreview:
			var req models.LinkPreviewRequest
			marshal(f.Data, &req)
			h.linkPreview(client, req)

		default:
			h.log.Debug("dropping unknown frame",
				zap.String("session", client.ID),
				zap.String("type", f.Type))
		}
	}
}

// linkPreview resolves the page title off the read loop and replies to the
// sender only. Failure degrades to the URL as title, never an error event.
func (h *Handlers) linkPreview(c *chat.Client, req models.LinkPreviewRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		defer cancel()

		title, found := h.fetcher.FetchTitle(ctx, req.URL)
		status := "ok"
		if !found {
			status = "fallback"
		}
		metrics.LinkPreviews.WithLabelValues(status).Inc()

		c.Send(models.WSFrame{
			Type: models.EventLinkPreview,
			Data: models.LinkPreviewResponse{
				TempID:  req.TempID,
				Preview: models.LinkPreview{URL: req.URL, Title: title},
			},
		})
	}()
}

// marshal re-decodes a frame's loose data into a typed payload.
func marshal(data interface{}, v interface{}) {
	b, _ := json.Marshal(data)
	_ = json.Unmarshal(b, v)
}
