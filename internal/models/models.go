package models

// Inbound event types (client -> server).
const (
	EventJoinRoom      = "join-room"
	EventChatMessage   = "chat-message"
	EventTypingStart   = "typing-start"
	EventTypingStop    = "typing-stop"
	EventEditMessage   = "edit-message"
	EventDeleteMessage = "delete-message"
	EventAIRequest     = "ai-request"
	EventLinkPreview   = "link-preview"
)

// Outbound event types (server -> session or room).
const (
	EventRoomError      = "room-error"
	EventUsernameError  = "username-error"
	EventRoomFull       = "room-full"
	EventUsernameSet    = "username-set"
	EventRoomSet        = "room-set"
	EventMemberCount    = "member-count"
	EventMemberJoined   = "member-joined"
	EventMemberLeft     = "member-left"
	EventRoomMembers    = "room-members"
	EventMessageEdited  = "message-edited"
	EventMessageDeleted = "message-deleted"
	EventTyping         = "typing"
	EventStopTyping     = "stop-typing"
	EventAIError        = "ai-error"
)

type WSFrame struct {
	Type string      `json:"type"` // one of the Event* constants
	Data interface{} `json:"data,omitempty"`
}

type JoinRequest struct {
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

type ChatMessage struct {
	ID       string `json:"id"`
	SenderID string `json:"senderId"`
	Username string `json:"username"`
	Content  string `json:"content"`
	SentAt   string `json:"sentAt"`
}

type EditMessage struct {
	MessageID  string `json:"messageId"`
	NewContent string `json:"newContent"`
}

type DeleteMessage struct {
	MessageID string `json:"messageId"`
}

// TranscriptEntry is one prior room message forwarded to the AI responder.
type TranscriptEntry struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

type LinkPreviewRequest struct {
	URL    string `json:"url"`
	TempID string `json:"tempId"`
}

type LinkPreview struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type LinkPreviewResponse struct {
	TempID  string      `json:"tempId"`
	Preview LinkPreview `json:"preview"`
}

// RoomSnapshot is an immutable view of a room used to build broadcasts.
type RoomSnapshot struct {
	RoomID    string   `json:"roomId"`
	Count     int      `json:"count"`
	Usernames []string `json:"usernames"`
}

// PresenceEvent is published on the redis firehose when membership changes.
type PresenceEvent struct {
	Action     string `json:"action"` // "joined" or "left"
	RoomID     string `json:"roomId"`
	SessionID  string `json:"sessionId"`
	Username   string `json:"username"`
	Members    int    `json:"members"`
	InstanceID string `json:"instanceId"`
	Timestamp  string `json:"timestamp"`
}
