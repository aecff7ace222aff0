package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"matrimony-server/internal/models"
)

func newMessageRouter(db *gorm.DB, userID string) *gin.Engine {
	h := NewMessageHandler(db)
	router := gin.New()
	group := router.Group("/api", asUser(userID))
	group.GET("/conversations/:otherUserId", h.GetConversationWithUser)
	group.GET("/messages/:conversationId", h.GetMessages)
	group.PUT("/messages/read/:conversationId", h.MarkMessagesRead)
	return router
}

func seedConversation(t *testing.T, db *gorm.DB, a, b string) *models.Conversation {
	t.Helper()
	conversation, err := models.EnsureConversation(db, a, b)
	require.NoError(t, err)
	return conversation
}

func TestGetConversationWithUser(t *testing.T) {
	db := newTestDB(t)
	me := createVerifiedUser(t, db, "me@example.com", "Asha", false)
	other := createVerifiedUser(t, db, "other@example.com", "Ravi", false)
	conversation := seedConversation(t, db, me.ID, other.ID)

	router := newMessageRouter(db, me.ID)
	w := doRequest(router, jsonRequest(http.MethodGet, "/api/conversations/"+other.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	payload, ok := decodeResponse(t, w).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, conversation.ID, payload["conversationId"])
}

func TestGetConversationWithUserNotFound(t *testing.T) {
	db := newTestDB(t)
	me := createVerifiedUser(t, db, "me@example.com", "Asha", false)
	stranger := createVerifiedUser(t, db, "stranger@example.com", "Ravi", false)

	router := newMessageRouter(db, me.ID)
	w := doRequest(router, jsonRequest(http.MethodGet, "/api/conversations/"+stranger.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMessagesOrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	me := createVerifiedUser(t, db, "me@example.com", "Asha", false)
	other := createVerifiedUser(t, db, "other@example.com", "Ravi", false)
	conversation := seedConversation(t, db, me.ID, other.ID)

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, db.Create(&models.Message{
			ConversationID: conversation.ID,
			SenderID:       me.ID,
			ReceiverID:     other.ID,
			Text:           text,
		}).Error)
	}

	router := newMessageRouter(db, me.ID)
	w := doRequest(router, jsonRequest(http.MethodGet, "/api/messages/"+conversation.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	transcript, ok := decodeResponse(t, w).Data.([]interface{})
	require.True(t, ok)
	require.Len(t, transcript, 3)
	assert.Equal(t, "first", transcript[0].(map[string]interface{})["message"])
	assert.Equal(t, "third", transcript[2].(map[string]interface{})["message"])
}

func TestGetMessagesRejectsNonParticipant(t *testing.T) {
	db := newTestDB(t)
	a := createVerifiedUser(t, db, "a@example.com", "Asha", false)
	b := createVerifiedUser(t, db, "b@example.com", "Ravi", false)
	outsider := createVerifiedUser(t, db, "outsider@example.com", "Maya", false)
	conversation := seedConversation(t, db, a.ID, b.ID)

	router := newMessageRouter(db, outsider.ID)
	w := doRequest(router, jsonRequest(http.MethodGet, "/api/messages/"+conversation.ID, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkMessagesReadIdempotent(t *testing.T) {
	db := newTestDB(t)
	me := createVerifiedUser(t, db, "me@example.com", "Asha", false)
	other := createVerifiedUser(t, db, "other@example.com", "Ravi", false)
	conversation := seedConversation(t, db, me.ID, other.ID)

	// Two inbound unread, one outbound that must stay untouched.
	require.NoError(t, db.Create(&models.Message{
		ConversationID: conversation.ID, SenderID: other.ID, ReceiverID: me.ID, Text: "hi",
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		ConversationID: conversation.ID, SenderID: other.ID, ReceiverID: me.ID, Text: "there",
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		ConversationID: conversation.ID, SenderID: me.ID, ReceiverID: other.ID, Text: "hello",
	}).Error)

	router := newMessageRouter(db, me.ID)
	w := doRequest(router, jsonRequest(http.MethodPut, "/api/messages/read/"+conversation.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var unreadInbound, unreadOutbound int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", me.ID, false).Count(&unreadInbound).Error)
	require.NoError(t, db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", other.ID, false).Count(&unreadOutbound).Error)
	assert.Equal(t, int64(0), unreadInbound)
	assert.Equal(t, int64(1), unreadOutbound)

	// Repeating is a no-op.
	w = doRequest(router, jsonRequest(http.MethodPut, "/api/messages/read/"+conversation.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
