package models

// Profile is the browsable snapshot created when a registration is verified.
type Profile struct {
	BaseModel
	UserID     string `gorm:"size:36;uniqueIndex" json:"userId"`
	Name       string `gorm:"size:200" json:"name"`
	Age        int    `json:"age"`
	Location   string `gorm:"size:100" json:"location"`
	Education  string `gorm:"size:100" json:"education"`
	Profession string `gorm:"size:100" json:"profession"`
	Interests  string `gorm:"type:text" json:"interests"` // JSON-encoded list of strings
	Image      string `gorm:"size:255" json:"image"`      // main picture, relative URL under /uploads

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// ProfileImage is one entry of a user's gallery.
type ProfileImage struct {
	BaseModel
	UserID   string `gorm:"size:36;index" json:"userId"`
	ImageURL string `gorm:"size:255;not null" json:"imageUrl"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
