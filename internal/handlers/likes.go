package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/realtime"
	"matrimony-server/internal/utils"
)

// LikeHandler handles profile likes.
type LikeHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

// NewLikeHandler creates a new LikeHandler.
func NewLikeHandler(db *gorm.DB, hub *realtime.Hub) *LikeHandler {
	return &LikeHandler{DB: db, Hub: hub}
}

// LikeProfile records a like and pushes a live toast to the liked user.
// Likes are append-only; a repeat like is a conflict.
func (h *LikeHandler) LikeProfile(c *gin.Context) {
	likerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	likedID := c.Param("profileUserId")
	if likedID == "" {
		utils.BadRequest(c, "Liked user ID is required")
		return
	}
	if likedID == likerID {
		utils.BadRequest(c, "Cannot like your own profile")
		return
	}

	like := models.Like{LikerID: likerID, LikedID: likedID}
	if err := h.DB.Create(&like).Error; err != nil {
		if isDuplicateKeyError(err) {
			utils.Conflict(c, "You have already liked this profile")
		} else {
			utils.InternalServerError(c, "Failed to like profile: "+err.Error())
		}
		return
	}

	if h.Hub != nil {
		var liker models.User
		if err := h.DB.Select("first_name").First(&liker, "id = ?", likerID).Error; err == nil {
			h.Hub.EmitToUser(likedID, realtime.EventNewLikeNotification, realtime.NotificationPayload{
				Message: liker.FirstName + " liked your profile!",
			})
		}
	}

	utils.Created(c, "Profile liked successfully", like)
}

// LikeWithUser is a like joined with the other party's card data.
type LikeWithUser struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image"`
}

// GetReceivedLikes lists users who liked the caller's profile.
func (h *LikeHandler) GetReceivedLikes(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var results []LikeWithUser
	err := h.DB.Model(&models.Like{}).
		Select("users.id as user_id, users.first_name, users.last_name, profiles.image").
		Joins("JOIN users ON likes.liker_id = users.id").
		Joins("JOIN profiles ON users.id = profiles.user_id").
		Where("likes.liked_id = ?", userID).
		Order("likes.created_at desc").
		Scan(&results).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch received likes: "+err.Error())
		return
	}

	utils.Success(c, "Received likes fetched successfully", results)
}

// GetSentLikes lists profiles the caller has liked.
func (h *LikeHandler) GetSentLikes(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var results []LikeWithUser
	err := h.DB.Model(&models.Like{}).
		Select("users.id as user_id, users.first_name, users.last_name, profiles.image").
		Joins("JOIN users ON likes.liked_id = users.id").
		Joins("JOIN profiles ON users.id = profiles.user_id").
		Where("likes.liker_id = ?", userID).
		Order("likes.created_at desc").
		Scan(&results).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch sent likes: "+err.Error())
		return
	}

	utils.Success(c, "Sent likes fetched successfully", results)
}
