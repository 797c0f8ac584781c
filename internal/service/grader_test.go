package service

import (
	"encoding/json"
	"quiz_portal_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizDef(answers ...interface{}) model.QuizDefinition {
	def := model.QuizDefinition{}
	for i, a := range answers {
		def.Questions = append(def.Questions, model.GradeQuestion{Number: i + 1, CorrectAnswer: a, Points: 1})
	}
	return def
}

func TestGradeScenario(t *testing.T) {
	res := Grade(quizDef(2, 1, 3), map[int]interface{}{1: 2, 2: 4, 3: 3})

	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Details, 3)
	assert.Equal(t, model.GradeDetail{QuestionNumber: 1, CorrectAnswer: 2, Given: 2, IsCorrect: true}, res.Details[0])
	assert.Equal(t, model.GradeDetail{QuestionNumber: 2, CorrectAnswer: 1, Given: 4, IsCorrect: false}, res.Details[1])
	assert.Equal(t, model.GradeDetail{QuestionNumber: 3, CorrectAnswer: 3, Given: 3, IsCorrect: true}, res.Details[2])
}

func TestGradeNumericCoercion(t *testing.T) {
	tests := []struct {
		name    string
		correct interface{}
		given   interface{}
		want    bool
	}{
		{"string given", 2, "2", true},
		{"string correct", "2", 2, true},
		{"float given", 2, 2.0, true},
		{"json number", 3, json.Number("3"), true},
		{"padded string", "2", " 2 ", true},
		{"decimal string", "2.0", 2, true},
		{"different number", 2, "3", false},
		{"text answers", "Paris", "Paris", true},
		{"text mismatch", "Paris", "paris", false},
		{"text vs number", "Paris", 2, false},
		{"empty given", 2, "", false},
		{"bool not numeric", 1, true, false},
		{"bool text", "true", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Grade(quizDef(tc.correct), map[int]interface{}{1: tc.given})
			assert.Equal(t, tc.want, res.Details[0].IsCorrect)
		})
	}
}

func TestGradeMissingAnswer(t *testing.T) {
	res := Grade(quizDef(1, 2), map[int]interface{}{2: 2})

	assert.Equal(t, 1, res.Correct)
	assert.False(t, res.Details[0].IsCorrect)
	assert.Nil(t, res.Details[0].Given)

	raw, err := json.Marshal(res.Details[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "given")
}

func TestGradeNilAnswers(t *testing.T) {
	res := Grade(quizDef(1, 2, 3), nil)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Details, 3)
}

func TestGradeIsIdempotent(t *testing.T) {
	def := quizDef(2, "b", 3)
	answers := map[int]interface{}{1: "2", 2: "a", 3: 3.0}

	first := Grade(def, answers)
	second := Grade(def, answers)
	assert.Equal(t, first, second)
}

func TestGradePointsWeighted(t *testing.T) {
	def := model.QuizDefinition{Questions: []model.GradeQuestion{
		{Number: 10, CorrectAnswer: "a", Points: 3},
		{Number: 11, CorrectAnswer: "b", Points: 1},
	}}
	res := Grade(def, map[int]interface{}{10: "a", 11: "c"})

	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 4, res.MaxScore)
	assert.InDelta(t, 75.0, res.Percentage(), 0.001)
}

func TestGradeEmptyDefinition(t *testing.T) {
	res := Grade(model.QuizDefinition{}, map[int]interface{}{1: 1})
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Details)
	assert.Zero(t, res.Percentage())
}
