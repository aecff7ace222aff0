package realtime

import (
	"encoding/json"

	"go.uber.org/zap"

	"matrimony-server/internal/models"
)

// Caps the chat text persisted per message; longer payloads are dropped.
const maxChatTextLen = 2000

type joinRoomPayload struct {
	UserID string `json:"userId"`
}

type sendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type markAsReadPayload struct {
	ConversationID string `json:"conversationId"`
	OtherUserID    string `json:"otherUserId"`
}

type interestNotificationPayload struct {
	ReceiverID string `json:"receiverId"`
}

// MessagesReadPayload notifies a sender which of their messages were read.
type MessagesReadPayload struct {
	ConversationID    string   `json:"conversationId"`
	UpdatedMessageIDs []string `json:"updatedMessageIds"`
}

// NotificationPayload is the generic toast-style event body.
type NotificationPayload struct {
	Message string `json:"message"`
}

type messageNotificationPayload struct {
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
}

// handleJoinRoom exists for compatibility with clients that emit an explicit
// join event. The connection is already in its authenticated room, so the
// only thing to do is flag mismatched ids.
func (h *Hub) handleJoinRoom(c *Client, data json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Warn("malformed join_room payload", zap.String("userId", c.UserID), zap.Error(err))
		return
	}
	if payload.UserID != "" && payload.UserID != c.UserID {
		h.log.Warn("join_room id does not match session, ignoring",
			zap.String("sessionUserId", c.UserID),
			zap.String("requestedUserId", payload.UserID))
	}
}

// handleSendMessage is the state transition behind a chat send: resolve the
// conversation, persist the row, fan the authoritative copy out to both
// rooms, then push a lighter toast event to the receiver only. The sender's
// other tabs get the server copy instead of trusting a local echo.
func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Warn("malformed send_message payload", zap.String("userId", c.UserID), zap.Error(err))
		return
	}
	if payload.ReceiverID == "" || payload.Message == "" {
		h.log.Warn("send_message missing receiver or text", zap.String("userId", c.UserID))
		return
	}
	if len(payload.Message) > maxChatTextLen {
		h.log.Warn("send_message text too long, dropping",
			zap.String("userId", c.UserID),
			zap.Int("length", len(payload.Message)))
		return
	}
	if payload.ReceiverID == c.UserID {
		h.log.Warn("send_message to self, dropping", zap.String("userId", c.UserID))
		return
	}

	conversation, err := models.EnsureConversation(h.db, c.UserID, payload.ReceiverID)
	if err != nil {
		h.log.Error("failed to resolve conversation",
			zap.String("senderId", c.UserID),
			zap.String("receiverId", payload.ReceiverID),
			zap.Error(err))
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       c.UserID,
		ReceiverID:     payload.ReceiverID,
		Text:           payload.Message,
	}
	if err := h.db.Create(&message).Error; err != nil {
		h.log.Error("failed to persist message",
			zap.String("conversationId", conversation.ID),
			zap.Error(err))
		return
	}

	h.EmitToUser(payload.ReceiverID, EventReceiveMessage, message)
	h.EmitToUser(c.UserID, EventReceiveMessage, message)

	h.EmitToUser(payload.ReceiverID, EventNewMessageNotification, messageNotificationPayload{
		SenderName: c.FirstName,
		Message:    message.Text,
	})
}

// handleMarkAsRead flips the unread rows sent by the other participant to
// this reader. Re-invoking after a first success touches zero rows and emits
// nothing, so clients never see redundant read events.
func (h *Hub) handleMarkAsRead(c *Client, data json.RawMessage) {
	var payload markAsReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Warn("malformed mark_as_read payload", zap.String("userId", c.UserID), zap.Error(err))
		return
	}
	if payload.ConversationID == "" || payload.OtherUserID == "" {
		return
	}

	var unread []models.Message
	if err := h.db.Select("id").
		Where("conversation_id = ? AND sender_id = ? AND receiver_id = ? AND is_read = ?",
			payload.ConversationID, payload.OtherUserID, c.UserID, false).
		Find(&unread).Error; err != nil {
		h.log.Error("failed to load unread messages",
			zap.String("conversationId", payload.ConversationID),
			zap.Error(err))
		return
	}
	if len(unread) == 0 {
		return
	}

	ids := make([]string, len(unread))
	for i, m := range unread {
		ids[i] = m.ID
	}

	if err := h.db.Model(&models.Message{}).
		Where("id IN ?", ids).
		Update("is_read", true).Error; err != nil {
		h.log.Error("failed to mark messages read",
			zap.String("conversationId", payload.ConversationID),
			zap.Error(err))
		return
	}

	h.EmitToUser(payload.OtherUserID, EventMessagesRead, MessagesReadPayload{
		ConversationID:    payload.ConversationID,
		UpdatedMessageIDs: ids,
	})
}

// handleInterestNotification relays a live interest toast to the target's
// room. The sender's stored name is used, never a client-supplied one.
func (h *Hub) handleInterestNotification(c *Client, data json.RawMessage) {
	var payload interestNotificationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Warn("malformed send_interest_notification payload", zap.String("userId", c.UserID), zap.Error(err))
		return
	}
	if payload.ReceiverID == "" {
		return
	}

	h.EmitToUser(payload.ReceiverID, EventNewInterestRequest, NotificationPayload{
		Message: c.FirstName + " has sent you an interest request!",
	})
}
