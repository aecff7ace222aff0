package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Conversation is the single chat channel between an unordered pair of users.
// The pair is stored canonically (User1ID < User2ID) so the composite unique
// index holds regardless of which side initiated it.
type Conversation struct {
	BaseModel
	User1ID string `gorm:"size:36;uniqueIndex:idx_conversation_pair" json:"user1Id"`
	User2ID string `gorm:"size:36;uniqueIndex:idx_conversation_pair" json:"user2Id"`

	User1 User `gorm:"foreignKey:User1ID" json:"-"`
	User2 User `gorm:"foreignKey:User2ID" json:"-"`
}

// CanonicalPair orders two user ids so lookups and the unique index agree.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// EnsureConversation resolves the conversation for a pair of users, creating
// it if absent. The insert is conflict-tolerant, so concurrent callers race
// safely against the unique index and both end up reading the same row.
func EnsureConversation(db *gorm.DB, userA, userB string) (*Conversation, error) {
	user1, user2 := CanonicalPair(userA, userB)

	insert := Conversation{User1ID: user1, User2ID: user2}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&insert).Error; err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	var conversation Conversation
	if err := db.Where("user1_id = ? AND user2_id = ?", user1, user2).First(&conversation).Error; err != nil {
		// Should not happen once the insert above succeeded; treated as a
		// hard error and the caller aborts the send.
		return nil, fmt.Errorf("conversation missing after insert for (%s, %s): %w", user1, user2, err)
	}

	return &conversation, nil
}

// FindConversation looks up the conversation for a pair without creating it.
func FindConversation(db *gorm.DB, userA, userB string) (*Conversation, error) {
	user1, user2 := CanonicalPair(userA, userB)

	var conversation Conversation
	if err := db.Where("user1_id = ? AND user2_id = ?", user1, user2).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}
