package model

// GradeQuestion is one entry of an answer key. CorrectAnswer is compared
// after numeric normalization, so "2" and 2 are equal.
type GradeQuestion struct {
	Number        int
	CorrectAnswer interface{}
	Points        int
}

type QuizDefinition struct {
	Questions []GradeQuestion
}

type GradeDetail struct {
	QuestionNumber int         `json:"qn"`
	CorrectAnswer  interface{} `json:"correctAnswer"`
	Given          interface{} `json:"given,omitempty"`
	IsCorrect      bool        `json:"isCorrect"`
}

type GradeResult struct {
	Correct  int           `json:"correct"`
	Total    int           `json:"total"`
	Score    int           `json:"score"`
	MaxScore int           `json:"maxScore"`
	Details  []GradeDetail `json:"details"`
}

func (r GradeResult) Percentage() float64 {
	if r.MaxScore == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.MaxScore)
}
