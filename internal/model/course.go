package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Code        string `gorm:"size:50" json:"code"`
	TeacherID   *uint  `gorm:"index" json:"teacher_id,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

func (Course) TableName() string {
	return "courses"
}
