package models

// InterestStatus represents the lifecycle state of an interest request
type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestRejected InterestStatus = "rejected"
)

// Interest is a directed edge sender -> receiver. At most one row exists per
// ordered pair; the receiver moves it out of pending exactly once.
type Interest struct {
	BaseModel
	SenderID   string         `gorm:"size:36;index;uniqueIndex:idx_interest_pair" json:"senderId"`
	ReceiverID string         `gorm:"size:36;index;uniqueIndex:idx_interest_pair" json:"receiverId"`
	Status     InterestStatus `gorm:"size:20;default:'pending'" json:"status"`

	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

// Like is an append-only directed edge liker -> liked, unique per ordered pair.
type Like struct {
	BaseModel
	LikerID string `gorm:"size:36;index;uniqueIndex:idx_like_pair" json:"likerId"`
	LikedID string `gorm:"size:36;index;uniqueIndex:idx_like_pair" json:"likedId"`

	Liker User `gorm:"foreignKey:LikerID" json:"-"`
	Liked User `gorm:"foreignKey:LikedID" json:"-"`
}
