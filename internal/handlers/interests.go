package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/realtime"
	"matrimony-server/internal/utils"
)

// InterestHandler handles interest requests and responses.
type InterestHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

// NewInterestHandler creates a new InterestHandler.
func NewInterestHandler(db *gorm.DB, hub *realtime.Hub) *InterestHandler {
	return &InterestHandler{DB: db, Hub: hub}
}

// SendInterestRequest represents the request body for sending an interest.
type SendInterestRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// SendInterest creates a pending interest. Sending is a premium feature and
// the gate runs before any row is written; a duplicate ordered pair is a
// conflict, not a second row.
func (h *InterestHandler) SendInterest(c *gin.Context) {
	senderID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req SendInterestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.ReceiverID == senderID {
		utils.BadRequest(c, "Cannot send an interest to yourself")
		return
	}

	var sender models.User
	if err := h.DB.Select("is_premium").First(&sender, "id = ?", senderID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if !sender.IsPremium {
		utils.Forbidden(c, "Sending interest is a premium feature. Please subscribe to continue.")
		return
	}

	interest := models.Interest{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Status:     models.InterestPending,
	}
	if err := h.DB.Create(&interest).Error; err != nil {
		if isDuplicateKeyError(err) {
			utils.Conflict(c, "You have already sent an interest to this profile")
		} else {
			utils.InternalServerError(c, "Failed to send interest: "+err.Error())
		}
		return
	}

	utils.Created(c, "Interest sent successfully", interest)
}

// InterestWithUser is an interest joined with the other party's card data.
type InterestWithUser struct {
	InterestID string                `json:"interestId"`
	Status     models.InterestStatus `json:"status"`
	UserID     string                `json:"userId"`
	FirstName  string                `json:"firstName"`
	LastName   string                `json:"lastName"`
	Image      string                `json:"image"`
}

// GetReceivedInterests lists interests where the caller is the receiver.
func (h *InterestHandler) GetReceivedInterests(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var results []InterestWithUser
	err := h.DB.Model(&models.Interest{}).
		Select("interests.id as interest_id, interests.status, users.id as user_id, users.first_name, users.last_name, profiles.image").
		Joins("JOIN users ON interests.sender_id = users.id").
		Joins("JOIN profiles ON users.id = profiles.user_id").
		Where("interests.receiver_id = ?", userID).
		Order("interests.created_at desc").
		Scan(&results).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch received interests: "+err.Error())
		return
	}

	utils.Success(c, "Received interests fetched successfully", results)
}

// GetSentInterests lists interests where the caller is the sender.
func (h *InterestHandler) GetSentInterests(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var results []InterestWithUser
	err := h.DB.Model(&models.Interest{}).
		Select("interests.id as interest_id, interests.status, users.id as user_id, users.first_name, users.last_name, profiles.image").
		Joins("JOIN users ON interests.receiver_id = users.id").
		Joins("JOIN profiles ON users.id = profiles.user_id").
		Where("interests.sender_id = ?", userID).
		Order("interests.created_at desc").
		Scan(&results).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch sent interests: "+err.Error())
		return
	}

	utils.Success(c, "Sent interests fetched successfully", results)
}

// GetAcceptedInterests lists accepted interests from either direction; these
// are the caller's open chat partners.
func (h *InterestHandler) GetAcceptedInterests(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var results []InterestWithUser
	err := h.DB.Raw(`
		SELECT i.id as interest_id, i.status, u.id as user_id, u.first_name, u.last_name, p.image
		FROM interests i JOIN users u ON i.receiver_id = u.id JOIN profiles p ON u.id = p.user_id
		WHERE i.sender_id = ? AND i.status = 'accepted'
		UNION
		SELECT i.id as interest_id, i.status, u.id as user_id, u.first_name, u.last_name, p.image
		FROM interests i JOIN users u ON i.sender_id = u.id JOIN profiles p ON u.id = p.user_id
		WHERE i.receiver_id = ? AND i.status = 'accepted'
	`, userID, userID).Scan(&results).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch accepted interests: "+err.Error())
		return
	}

	utils.Success(c, "Accepted interests fetched successfully", results)
}

// RespondToInterestRequest represents the request body for responding.
type RespondToInterestRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// RespondToInterest moves a pending interest to accepted or rejected. Accept
// also creates the canonical conversation inside the same transaction. The
// realtime notifications afterwards are best-effort: a crash between commit
// and emit only costs the live update, which clients recover over REST.
func (h *InterestHandler) RespondToInterest(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	interestID := c.Param("interestId")

	var req RespondToInterestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	status := models.InterestStatus(req.Status)

	var interest models.Interest
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND receiver_id = ?", interestID, userID).First(&interest).Error; err != nil {
			return err
		}
		if err := tx.Model(&interest).Update("status", status).Error; err != nil {
			return err
		}
		if status == models.InterestAccepted {
			user1, user2 := models.CanonicalPair(interest.SenderID, interest.ReceiverID)
			conversation := models.Conversation{User1ID: user1, User2ID: user2}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&conversation).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Interest not found or you are not authorized")
		} else {
			utils.InternalServerError(c, "Failed to respond to interest: "+err.Error())
		}
		return
	}

	if h.Hub != nil {
		var responder models.User
		if err := h.DB.Select("first_name").First(&responder, "id = ?", userID).Error; err == nil {
			h.Hub.EmitToUser(interest.SenderID, realtime.EventInterestResponse, realtime.NotificationPayload{
				Message: responder.FirstName + " has " + string(status) + " your interest request.",
			})
		}
		h.Hub.EmitToUser(interest.SenderID, realtime.EventInterestStatusUpdated, interest)
		h.Hub.EmitToUser(interest.ReceiverID, realtime.EventInterestStatusUpdated, interest)
	}

	utils.Success(c, "Interest updated successfully", interest)
}

// isDuplicateKeyError reports whether err is a unique-constraint violation.
// GORM surfaces a translated error for most dialects; the string check
// covers drivers that do not translate.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}
