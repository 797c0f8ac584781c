package model

import "time"

// swagger:model Test
type Test struct {
	BaseModel
	CourseID            *uint      `gorm:"index" json:"course_id,omitempty"`
	Title               string     `gorm:"size:255;not null" json:"title"`
	Description         string     `gorm:"type:text" json:"description"`
	QuizType            string     `gorm:"size:50;not null" json:"quiz_type"`
	TestType            string     `gorm:"size:50;not null" json:"test_type"`
	DurationMinutes     int        `gorm:"not null" json:"duration_minutes"`
	StartTime           *time.Time `json:"start_time,omitempty"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	PassingScore        int        `gorm:"default:0" json:"passing_score"` // percent
	QuestionsToAsk      *int       `json:"questions_to_ask,omitempty"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	MaxAttempts         int        `gorm:"default:0" json:"max_attempts"` // 0 = unlimited
	PlatformRestriction string     `gorm:"size:50" json:"platform_restriction,omitempty"`
	AllowedBrowsers     string     `gorm:"size:255" json:"allowed_browsers,omitempty"`
	DetectWindowSwitch  bool       `gorm:"default:false" json:"detect_window_switch"`
	PreventScreenshot   bool       `gorm:"default:false" json:"prevent_screenshot"`
	DetectPhoneCall     bool       `gorm:"default:false" json:"detect_phone_call"`
	CreatedBy           *uint      `gorm:"index" json:"created_by,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// OpenAt reports whether the test accepts new attempts at t.
func (t *Test) OpenAt(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	if t.StartTime != nil && now.Before(*t.StartTime) {
		return false
	}
	if t.EndTime != nil && now.After(*t.EndTime) {
		return false
	}
	return true
}
