package model

import "gorm.io/datatypes"

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeCode           = "code"
)

// Question belongs to exactly one test. CorrectAnswer, TestCases and
// Explanation are authoring fields and only leave the service through
// QuestionFull.
// swagger:model Question
type Question struct {
	BaseModel
	TestID        uint           `gorm:"index;not null" json:"test_id"`
	QuestionType  string         `gorm:"size:50;not null" json:"question_type"`
	QuestionText  string         `gorm:"type:text;not null" json:"question_text"`
	CodeLanguage  string         `gorm:"size:50" json:"code_language,omitempty"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"correct_answer"`
	TestCases     datatypes.JSON `json:"test_cases,omitempty"`
	Explanation   string         `gorm:"type:text" json:"explanation,omitempty"`
	Points        int            `gorm:"default:1" json:"points"`
	OrderNumber   int            `gorm:"index;default:0" json:"order_number"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionPublic is the student-safe projection.
type QuestionPublic struct {
	ID           uint           `json:"id"`
	TestID       uint           `json:"test_id"`
	QuestionType string         `json:"question_type"`
	QuestionText string         `json:"question_text"`
	CodeLanguage string         `json:"code_language,omitempty"`
	Options      datatypes.JSON `json:"options,omitempty"`
	Points       int            `json:"points"`
	OrderNumber  int            `json:"order_number"`
}

// QuestionFull is the authoring projection seen by teachers and admins.
type QuestionFull struct {
	QuestionPublic
	CorrectAnswer string         `json:"correct_answer"`
	TestCases     datatypes.JSON `json:"test_cases"`
	Explanation   string         `json:"explanation"`
}

// Project maps the stored record to its full projection. The public one is
// always derived from it so both stay in sync.
func (q *Question) Project() QuestionFull {
	return QuestionFull{
		QuestionPublic: QuestionPublic{
			ID:           q.ID,
			TestID:       q.TestID,
			QuestionType: q.QuestionType,
			QuestionText: q.QuestionText,
			CodeLanguage: q.CodeLanguage,
			Options:      q.Options,
			Points:       q.Points,
			OrderNumber:  q.OrderNumber,
		},
		CorrectAnswer: q.CorrectAnswer,
		TestCases:     q.TestCases,
		Explanation:   q.Explanation,
	}
}

func (f QuestionFull) Public() QuestionPublic {
	return f.QuestionPublic
}
