package service

import (
	"encoding/json"
	"quiz_portal_backend/internal/model"
	"strings"

	"github.com/spf13/cast"
)

// Grade scores answers against def. It never fails: an unanswered question
// is wrong and its detail carries no given value.
func Grade(def model.QuizDefinition, answers map[int]interface{}) model.GradeResult {
	res := model.GradeResult{
		Total:   len(def.Questions),
		Details: make([]model.GradeDetail, 0, len(def.Questions)),
	}

	for _, q := range def.Questions {
		res.MaxScore += q.Points
		detail := model.GradeDetail{
			QuestionNumber: q.Number,
			CorrectAnswer:  q.CorrectAnswer,
		}
		if given, ok := answers[q.Number]; ok && given != nil {
			detail.Given = given
			detail.IsCorrect = answersEqual(q.CorrectAnswer, given)
		}
		if detail.IsCorrect {
			res.Correct++
			res.Score += q.Points
		}
		res.Details = append(res.Details, detail)
	}
	return res
}

// answersEqual compares numerically when both sides are numbers or numeric
// strings, and as trimmed strings otherwise.
func answersEqual(correct, given interface{}) bool {
	if a, ok := numeric(correct); ok {
		if b, ok := numeric(given); ok {
			return a == b
		}
	}
	a, err := cast.ToStringE(correct)
	if err != nil {
		return false
	}
	b, err := cast.ToStringE(given)
	if err != nil {
		return false
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func numeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		return f, err == nil
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
