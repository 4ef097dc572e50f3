package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatrelay/internal/metrics"
	"chatrelay/internal/models"
)

const (
	maxUsernameLen  = 20
	aiHistoryWindow = 10
	aiSenderName    = "AI"

	// DefaultAITimeout bounds the external responder call.
	DefaultAITimeout = 30 * time.Second
)

// AIResponder produces a single text reply for a bounded room transcript.
// Absence of a reply within the deadline is a normal failure mode.
type AIResponder interface {
	Respond(ctx context.Context, transcript []models.TranscriptEntry) (string, error)
}

// PresencePublisher receives best-effort membership change notifications.
type PresencePublisher interface {
	Publish(event models.PresenceEvent)
}

// Coordinator owns the per-session lifecycle: join, leave and event relay
// scoped to the session's current room. Each session's events arrive from its
// own read loop, so session fields need no locking beyond the room discipline
// in Registry.
type Coordinator struct {
	log       *zap.Logger
	registry  *Registry
	ai        AIResponder
	presence  PresencePublisher
	aiTimeout time.Duration
}

func NewCoordinator(log *zap.Logger, registry *Registry, ai AIResponder, presence PresencePublisher, aiTimeout time.Duration) *Coordinator {
	if aiTimeout <= 0 {
		aiTimeout = DefaultAITimeout
	}
	return &Coordinator{
		log:       log,
		registry:  registry,
		ai:        ai,
		presence:  presence,
		aiTimeout: aiTimeout,
	}
}

// Join validates the requested room and username, leaves any prior room, and
// admits the session. Errors go to the requesting session only; on a failed
// admit the prior membership is not restored.
func (co *Coordinator) Join(c *Client, roomID, username string) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		c.Send(frame(models.EventRoomError, "invalid room"))
		return
	}
	username = strings.TrimSpace(username)
	if runes := []rune(username); len(runes) > maxUsernameLen {
		username = string(runes[:maxUsernameLen])
	}
	if username == "" {
		c.Send(frame(models.EventUsernameError, "invalid username"))
		return
	}

	if c.Room != nil {
		co.Leave(c)
	}

	room, err := co.registry.Admit(roomID, c, username)
	if err != nil {
		switch err {
		case ErrRoomFull:
			c.Send(frame(models.EventRoomFull, "room is full"))
		case ErrUsernameTaken:
			c.Send(frame(models.EventUsernameError, "username already taken"))
		}
		return
	}

	c.Room = room
	c.Username = username

	c.Send(frame(models.EventUsernameSet, username))
	c.Send(frame(models.EventRoomSet, roomID))

	snap := room.Snapshot()
	room.Broadcast(frame(models.EventMemberCount, snap.Count))
	room.Broadcast(frame(models.EventMemberJoined, username))
	room.Broadcast(frame(models.EventRoomMembers, snap.Usernames))

	co.log.Info("member joined room",
		zap.String("room", roomID),
		zap.String("session", c.ID),
		zap.Int("members", snap.Count))
	co.publishPresence("joined", roomID, c.ID, username, snap.Count)
}

// Leave removes the session from its room, notifying any remaining members.
// Safe to call on an unjoined session.
func (co *Coordinator) Leave(c *Client) {
	room := c.Room
	if room == nil {
		return
	}
	username := c.Username
	c.Room = nil
	c.Username = ""

	co.registry.Remove(room, c)
	snap := room.Snapshot()
	if snap.Count > 0 {
		room.Broadcast(frame(models.EventMemberCount, snap.Count))
		room.Broadcast(frame(models.EventMemberLeft, username))
		room.Broadcast(frame(models.EventRoomMembers, snap.Usernames))
	}

	co.log.Info("member left room",
		zap.String("room", room.ID),
		zap.String("session", c.ID),
		zap.Int("members", snap.Count))
	co.publishPresence("left", room.ID, c.ID, username, snap.Count)
}

// SendChat stamps and broadcasts a chat message to the whole room, sender
// included, so the sender's UI reflects server-confirmed state. Dropped
// silently when unjoined or empty after trimming.
func (co *Coordinator) SendChat(c *Client, content string) {
	room := c.Room
	if room == nil {
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	now := time.Now()
	msg := models.ChatMessage{
		ID:       messageID(c.ID, now),
		SenderID: c.ID,
		Username: c.Username,
		Content:  content,
		SentAt:   now.UTC().Format(time.RFC3339),
	}
	room.Broadcast(frame(models.EventChatMessage, msg))
	metrics.MessagesRelayed.Inc()
}

// Typing broadcasts the sender's username to the rest of the room.
func (co *Coordinator) Typing(c *Client, active bool) {
	room := c.Room
	if room == nil {
		return
	}
	event := models.EventStopTyping
	if active {
		event = models.EventTyping
	}
	room.BroadcastExcept(c, frame(event, c.Username))
}

// EditMessage rebroadcasts an edit verbatim. The coordinator does not verify
// the referenced message exists or that the editor is the original author.
func (co *Coordinator) EditMessage(c *Client, edit models.EditMessage) {
	room := c.Room
	if room == nil {
		return
	}
	room.Broadcast(frame(models.EventMessageEdited, edit))
}

// DeleteMessage rebroadcasts a deletion verbatim, same trust model as edits.
func (co *Coordinator) DeleteMessage(c *Client, del models.DeleteMessage) {
	room := c.Room
	if room == nil {
		return
	}
	room.Broadcast(frame(models.EventMessageDeleted, del))
}

// RequestAI forwards a bounded transcript window to the external responder
// and relays the reply into the room as the synthetic "AI" participant. The
// await runs off the caller's read loop; the room-wide typing indicator is
// cleared on every exit path.
func (co *Coordinator) RequestAI(c *Client, transcript []models.TranscriptEntry) {
	room := c.Room
	if room == nil {
		return
	}
	if co.ai == nil {
		c.Send(frame(models.EventAIError, "AI responder is not configured"))
		return
	}
	if len(transcript) > aiHistoryWindow {
		transcript = transcript[len(transcript)-aiHistoryWindow:]
	}

	room.Broadcast(frame(models.EventTyping, aiSenderName))
	go func() {
		defer room.Broadcast(frame(models.EventStopTyping, aiSenderName))

		ctx, cancel := context.WithTimeout(context.Background(), co.aiTimeout)
		defer cancel()

		reply, err := co.ai.Respond(ctx, transcript)
		if err != nil {
			co.log.Warn("AI responder failed",
				zap.String("room", room.ID),
				zap.String("session", c.ID),
				zap.Error(err))
			c.Send(frame(models.EventAIError, "AI request failed"))
			metrics.AIRequests.WithLabelValues("error").Inc()
			return
		}

		now := time.Now()
		msg := models.ChatMessage{
			ID:       messageID(aiSenderName, now),
			SenderID: aiSenderName,
			Username: aiSenderName,
			Content:  reply,
			SentAt:   now.UTC().Format(time.RFC3339),
		}
		room.Broadcast(frame(models.EventChatMessage, msg))
		metrics.AIRequests.WithLabelValues("ok").Inc()
	}()
}

func (co *Coordinator) publishPresence(action, roomID, sessionID, username string, members int) {
	if co.presence == nil {
		return
	}
	co.presence.Publish(models.PresenceEvent{
		Action:    action,
		RoomID:    roomID,
		SessionID: sessionID,
		Username:  username,
		Members:   members,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// messageID is unique enough for client-side dedupe, not across restarts.
func messageID(owner string, at time.Time) string {
	return fmt.Sprintf("%s-%d", owner, at.UnixNano())
}

func frame(eventType string, data interface{}) models.WSFrame {
	return models.WSFrame{Type: eventType, Data: data}
}
