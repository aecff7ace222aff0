package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matrimony-server/internal/models"
	"matrimony-server/internal/presence"
	"matrimony-server/internal/utils"
)

// MiscHandler serves the public pages (success stories, contact form) and
// the presence lookup.
type MiscHandler struct {
	DB       *gorm.DB
	Presence *presence.Tracker
}

// NewMiscHandler creates a new MiscHandler. The presence tracker is optional.
func NewMiscHandler(db *gorm.DB, tracker *presence.Tracker) *MiscHandler {
	return &MiscHandler{DB: db, Presence: tracker}
}

// GetSuccessStories lists every published success story.
func (h *MiscHandler) GetSuccessStories(c *gin.Context) {
	var stories []models.SuccessStory
	if err := h.DB.Order("created_at desc").Find(&stories).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch success stories: "+err.Error())
		return
	}
	utils.Success(c, "Success stories fetched successfully", stories)
}

// ContactRequest represents a contact form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SubmitContactForm records a contact submission.
func (h *MiscHandler) SubmitContactForm(c *gin.Context) {
	var req ContactRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	submission := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.DB.Create(&submission).Error; err != nil {
		utils.InternalServerError(c, "Failed to submit message: "+err.Error())
		return
	}

	utils.Created(c, "Message submitted successfully", nil)
}

// GetPresence reports whether a user currently holds a live connection.
func (h *MiscHandler) GetPresence(c *gin.Context) {
	if h.Presence == nil {
		utils.Success(c, "Presence tracking disabled", gin.H{"online": false})
		return
	}

	userID := c.Param("userId")
	online, err := h.Presence.IsOnline(context.Background(), userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to check presence: "+err.Error())
		return
	}

	utils.Success(c, "Presence fetched successfully", gin.H{"online": online})
}
