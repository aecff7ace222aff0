package models

// SuccessStory is a couple's story shown on the public landing pages.
type SuccessStory struct {
	BaseModel
	CoupleNames string `gorm:"size:200" json:"coupleNames"`
	Story       string `gorm:"type:text" json:"story"`
	Image       string `gorm:"size:255" json:"image"`
	MarriedOn   string `gorm:"size:50" json:"marriedOn"`
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	BaseModel
	Name    string `gorm:"size:100" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Subject string `gorm:"size:255" json:"subject"`
	Message string `gorm:"type:text" json:"message"`
}
