package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a registered member of the platform
type User struct {
	BaseModel
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName     string     `gorm:"size:100" json:"firstName"`
	LastName      string     `gorm:"size:100" json:"lastName"`
	Phone         string     `gorm:"size:20" json:"phone,omitempty"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Gender        string     `gorm:"size:20" json:"gender,omitempty"`
	Location      string     `gorm:"size:100" json:"location,omitempty"`
	Education     string     `gorm:"size:100" json:"education,omitempty"`
	Profession    string     `gorm:"size:100" json:"profession,omitempty"`
	Height        string     `gorm:"size:20" json:"height,omitempty"`
	MaritalStatus string     `gorm:"size:30" json:"maritalStatus,omitempty"`
	Religion      string     `gorm:"size:50" json:"religion,omitempty"`
	MotherTongue  string     `gorm:"size:50" json:"motherTongue,omitempty"`
	AboutMe       string     `gorm:"type:text" json:"aboutMe,omitempty"`
	IsVerified    bool       `gorm:"default:false" json:"isVerified"`
	IsPremium     bool       `gorm:"default:false" json:"isPremium"`
	ProfileViews  int        `gorm:"default:0" json:"-"`
	OTP           string     `gorm:"size:10" json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`

	// Relations (not always preloaded)
	Profile          *Profile       `gorm:"foreignKey:UserID" json:"-"`
	ProfileImages    []ProfileImage `gorm:"foreignKey:UserID" json:"-"`
	SentInterests    []Interest     `gorm:"foreignKey:SenderID" json:"-"`
	SentMessages     []Message      `gorm:"foreignKey:SenderID" json:"-"`
	ReceivedMessages []Message      `gorm:"foreignKey:ReceiverID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	IsPremium  bool   `json:"isPremium"`
	IsVerified bool   `json:"isVerified"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsPremium:  u.IsPremium,
		IsVerified: u.IsVerified,
	}
}
