package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Choice ids may start at 0; membership of the answer is checked separately.
type Choice struct {
	ID   int    `json:"id"`
	Text string `json:"text" validate:"required"`
}

// GeneratedQuestion is the shape requested from the content provider.
type GeneratedQuestion struct {
	QuestionNumber int        `json:"questionNumber" validate:"required,gte=1"`
	QuestionText   string     `json:"questionText" validate:"required"`
	Explanation    string     `json:"explanation"`
	Choices        []Choice   `json:"choices" validate:"required,min=2,dive"`
	Answer         int        `json:"answer"`
	Difficulty     Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// Quiz is the generator module's self-contained quiz with an embedded
// answer key.
type Quiz struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Questions    []GeneratedQuestion `json:"questions"`
	AttemptLimit int                 `json:"attemptLimit,omitempty"`
	CreatedAt    int64               `json:"createdAt"` // unix millis
}

func (q *Quiz) Definition() QuizDefinition {
	def := QuizDefinition{Questions: make([]GradeQuestion, 0, len(q.Questions))}
	for _, gq := range q.Questions {
		def.Questions = append(def.Questions, GradeQuestion{
			Number:        gq.QuestionNumber,
			CorrectAnswer: gq.Answer,
			Points:        1,
		})
	}
	return def
}

type QuizAttempt struct {
	ID        string              `json:"id"`
	QuizID    string              `json:"quizId"`
	User      string              `json:"user"`
	Answers   map[int]interface{} `json:"answers"`
	Result    GradeResult         `json:"result"`
	CreatedAt int64               `json:"createdAt"`
}

func NowMillis() int64 {
	return time.Now().UnixMilli()
}
