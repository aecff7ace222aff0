package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/mailer"
	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer mailer.Mailer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Mailer: m}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"dateOfBirth" binding:"required"`
	Gender        string `json:"gender" binding:"required"`
	Location      string `json:"location"`
	Education     string `json:"education"`
	Profession    string `json:"profession"`
	Height        string `json:"height"`
	MaritalStatus string `json:"maritalStatus"`
	Religion      string `json:"religion"`
	MotherTongue  string `json:"motherTongue"`
	AboutMe       string `json:"aboutMe"`
}

// Register creates an unverified user and emails a one-time code. The row
// insert and the email dispatch share one transaction so a failed send
// leaves no pending registration behind.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
		return
	}

	// A verified account owns its email for good; only stale unverified
	// attempts may be replaced.
	var existingUser models.User
	if err := h.DB.Where("email = ? AND is_verified = ?", req.Email, true).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "A verified user with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate OTP: "+err.Error())
		return
	}
	otpExpiresAt := time.Now().Add(time.Duration(h.Cfg.OTPExpiryMinutes) * time.Minute)

	user := models.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		DateOfBirth:   &dateOfBirth,
		Gender:        req.Gender,
		Location:      req.Location,
		Education:     req.Education,
		Profession:    req.Profession,
		Height:        req.Height,
		MaritalStatus: req.MaritalStatus,
		Religion:      req.Religion,
		MotherTongue:  req.MotherTongue,
		AboutMe:       req.AboutMe,
		OTP:           otp,
		OTPExpiresAt:  &otpExpiresAt,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND is_verified = ?", req.Email, false).Delete(&models.User{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return h.Mailer.SendOTP(req.Email, "Your Registration OTP Code", otp, h.Cfg.OTPExpiryMinutes)
	})
	if err != nil {
		utils.InternalServerError(c, "Server error during registration: "+err.Error())
		return
	}

	utils.Success(c, "OTP has been sent to your email address", gin.H{"email": req.Email})
}

// VerifyOTPRequest represents the request body for both OTP verification steps.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyRegistration confirms the emailed code, activates the user and
// creates the browsable profile in the same transaction.
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ? AND is_verified = ?", req.Email, false).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "No pending registration found for this email")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if user.OTP != req.OTP || user.OTPExpiresAt == nil || user.OTPExpiresAt.Before(time.Now()) {
		utils.BadRequest(c, "Invalid or expired OTP. Please try registering again.")
		return
	}

	age := 0
	if user.DateOfBirth != nil {
		age = time.Now().Year() - user.DateOfBirth.Year()
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"is_verified":    true,
			"otp":            "",
			"otp_expires_at": nil,
		}).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:     user.ID,
			Name:       user.FirstName + " " + user.LastName,
			Age:        age,
			Location:   user.Location,
			Education:  user.Education,
			Profession: user.Profession,
			Interests:  "[]",
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Server error during verification: "+err.Error())
		return
	}

	utils.Created(c, "Registration successful! You can now log in.", nil)
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and emails a fresh one-time code. The token is
// only issued once the code is confirmed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ? AND is_verified = ?", req.Email, true).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Invalid credentials or user not verified")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.BadRequest(c, "Invalid credentials")
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate OTP: "+err.Error())
		return
	}
	otpExpiresAt := time.Now().Add(time.Duration(h.Cfg.OTPExpiryMinutes) * time.Minute)

	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": otpExpiresAt,
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to store OTP: "+err.Error())
		return
	}

	if err := h.Mailer.SendOTP(user.Email, "Your Login OTP Code", otp, h.Cfg.OTPExpiryMinutes); err != nil {
		utils.InternalServerError(c, "Failed to send OTP email: "+err.Error())
		return
	}

	utils.Success(c, "OTP has been sent to your registered email", gin.H{"email": user.Email})
}

// VerifyLoginResponse represents the response body for a confirmed login.
type VerifyLoginResponse struct {
	Token string               `json:"token"`
	User  models.UserSanitized `json:"user"`
}

// VerifyLogin confirms the login code and issues the bearer token.
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ? AND is_verified = ?", req.Email, true).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if user.OTP != req.OTP || user.OTPExpiresAt == nil || user.OTPExpiresAt.Before(time.Now()) {
		utils.BadRequest(c, "Invalid or expired OTP")
		return
	}

	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"otp":            "",
		"otp_expires_at": nil,
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear OTP: "+err.Error())
		return
	}

	token, err := utils.GenerateToken(&user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", VerifyLoginResponse{
		Token: token,
		User:  user.Sanitize(),
	})
}

// GetMe handles fetching the currently authenticated user's summary.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "User fetched successfully", user.Sanitize())
}
