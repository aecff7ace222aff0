package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

// MessageHandler serves the REST side of chat: history backfill on mount and
// the non-realtime read-mark.
type MessageHandler struct {
	DB *gorm.DB
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

// GetConversationWithUser resolves the conversation between the caller and
// another user without creating it.
func (h *MessageHandler) GetConversationWithUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	otherUserID := c.Param("otherUserId")

	conversation, err := models.FindConversation(h.DB, userID, otherUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Conversation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Conversation fetched successfully", gin.H{"conversationId": conversation.ID})
}

// GetMessages returns the transcript of a conversation the caller belongs
// to, oldest first. Same-timestamp ties break on message id so the order is
// stable across fetches.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	conversationID := c.Param("conversationId")

	var conversation models.Conversation
	if err := h.DB.First(&conversation, "id = ?", conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Conversation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if conversation.User1ID != userID && conversation.User2ID != userID {
		utils.Forbidden(c, "You are not a participant of this conversation")
		return
	}

	var messages []models.Message
	if err := h.DB.Where("conversation_id = ?", conversationID).
		Order("created_at asc").Order("id asc").
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	utils.Success(c, "Messages fetched successfully", messages)
}

// MarkMessagesRead flips every unread message addressed to the caller in a
// conversation. Idempotent; repeating it affects zero rows.
func (h *MessageHandler) MarkMessagesRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	conversationID := c.Param("conversationId")

	if err := h.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to mark messages as read: "+err.Error())
		return
	}

	utils.Success(c, "Messages marked as read", nil)
}
