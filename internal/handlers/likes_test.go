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

func newLikeRouter(db *gorm.DB, userID string) *gin.Engine {
	h := NewLikeHandler(db, nil)
	router := gin.New()
	group := router.Group("/api", asUser(userID))
	group.POST("/likes/:profileUserId", h.LikeProfile)
	group.GET("/likes/received", h.GetReceivedLikes)
	group.GET("/likes/sent", h.GetSentLikes)
	return router
}

func TestLikeProfile(t *testing.T) {
	db := newTestDB(t)
	liker := createVerifiedUser(t, db, "liker@example.com", "Asha", false)
	liked := createVerifiedUser(t, db, "liked@example.com", "Ravi", false)
	router := newLikeRouter(db, liker.ID)

	w := doRequest(router, jsonRequest(http.MethodPost, "/api/likes/"+liked.ID, nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var like models.Like
	require.NoError(t, db.First(&like).Error)
	assert.Equal(t, liker.ID, like.LikerID)
	assert.Equal(t, liked.ID, like.LikedID)
}

func TestLikeProfileDuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	liker := createVerifiedUser(t, db, "liker@example.com", "Asha", false)
	liked := createVerifiedUser(t, db, "liked@example.com", "Ravi", false)
	router := newLikeRouter(db, liker.ID)

	w := doRequest(router, jsonRequest(http.MethodPost, "/api/likes/"+liked.ID, nil))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(router, jsonRequest(http.MethodPost, "/api/likes/"+liked.ID, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLikeOwnProfileRejected(t *testing.T) {
	db := newTestDB(t)
	liker := createVerifiedUser(t, db, "liker@example.com", "Asha", false)
	router := newLikeRouter(db, liker.ID)

	w := doRequest(router, jsonRequest(http.MethodPost, "/api/likes/"+liker.ID, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReceivedAndSentLikes(t *testing.T) {
	db := newTestDB(t)
	me := createVerifiedUser(t, db, "me@example.com", "Asha", false)
	admirer := createVerifiedUser(t, db, "admirer@example.com", "Ravi", false)
	crush := createVerifiedUser(t, db, "crush@example.com", "Maya", false)

	require.NoError(t, db.Create(&models.Like{LikerID: admirer.ID, LikedID: me.ID}).Error)
	require.NoError(t, db.Create(&models.Like{LikerID: me.ID, LikedID: crush.ID}).Error)

	router := newLikeRouter(db, me.ID)

	w := doRequest(router, jsonRequest(http.MethodGet, "/api/likes/received", nil))
	require.Equal(t, http.StatusOK, w.Code)
	received, ok := decodeResponse(t, w).Data.([]interface{})
	require.True(t, ok)
	require.Len(t, received, 1)
	assert.Equal(t, "Ravi", received[0].(map[string]interface{})["firstName"])

	w = doRequest(router, jsonRequest(http.MethodGet, "/api/likes/sent", nil))
	require.Equal(t, http.StatusOK, w.Code)
	sent, ok := decodeResponse(t, w).Data.([]interface{})
	require.True(t, ok)
	require.Len(t, sent, 1)
	assert.Equal(t, "Maya", sent[0].(map[string]interface{})["firstName"])
}
