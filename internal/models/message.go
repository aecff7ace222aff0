package models

// Message belongs to exactly one conversation. The receiver is stored
// redundantly with the conversation's participants to keep read-state
// queries simple. Rows are never edited or deleted; the only mutation is
// flipping IsRead.
type Message struct {
	BaseModel
	ConversationID string `gorm:"size:36;index" json:"conversationId"`
	SenderID       string `gorm:"size:36;index" json:"senderId"`
	ReceiverID     string `gorm:"size:36;index" json:"receiverId"`
	Text           string `gorm:"type:text" json:"message"`
	IsRead         bool   `gorm:"default:false" json:"isRead"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	Sender       User         `gorm:"foreignKey:SenderID" json:"-"`
	Receiver     User         `gorm:"foreignKey:ReceiverID" json:"-"`
}
