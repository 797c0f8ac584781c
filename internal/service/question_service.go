package service

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"

	"gorm.io/datatypes"
)

// QuestionService is the authoring side of the question store. Reads for
// test takers go through QuestionSelector.
type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	TestRepo     *repository.TestRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository, testRepo *repository.TestRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo, TestRepo: testRepo}
}

type QuestionInput struct {
	TestID        *uint          `json:"test_id"`
	QuestionType  *string        `json:"question_type"`
	QuestionText  *string        `json:"question_text"`
	CodeLanguage  *string        `json:"code_language"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer *string        `json:"correct_answer"`
	TestCases     datatypes.JSON `json:"test_cases"`
	Explanation   *string        `json:"explanation"`
	Points        *int           `json:"points"`
	OrderNumber   *int           `json:"order_number"`
}

func (in QuestionInput) apply(q *model.Question) {
	if in.QuestionType != nil {
		q.QuestionType = *in.QuestionType
	}
	if in.QuestionText != nil {
		q.QuestionText = *in.QuestionText
	}
	if in.CodeLanguage != nil {
		q.CodeLanguage = *in.CodeLanguage
	}
	if in.Options != nil {
		q.Options = in.Options
	}
	if in.CorrectAnswer != nil {
		q.CorrectAnswer = *in.CorrectAnswer
	}
	if in.TestCases != nil {
		q.TestCases = in.TestCases
	}
	if in.Explanation != nil {
		q.Explanation = *in.Explanation
	}
	if in.Points != nil {
		q.Points = *in.Points
	}
	if in.OrderNumber != nil {
		q.OrderNumber = *in.OrderNumber
	}
}

func (s *QuestionService) Get(ctx context.Context, id uint) (model.QuestionFull, error) {
	q, err := s.QuestionRepo.FindByID(ctx, id)
	if err != nil {
		return model.QuestionFull{}, err
	}
	return q.Project(), nil
}

// Create appends the question to its test; without an explicit order number
// it goes last.
func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (model.QuestionFull, error) {
	var missing []string
	if in.TestID == nil || *in.TestID == 0 {
		missing = append(missing, "test_id")
	}
	if blank(in.QuestionType) {
		missing = append(missing, "question_type")
	}
	if blank(in.QuestionText) {
		missing = append(missing, "question_text")
	}
	if blank(in.CorrectAnswer) {
		missing = append(missing, "correct_answer")
	}
	if len(missing) > 0 {
		return model.QuestionFull{}, util.Required(missing...)
	}
	if in.Points != nil && *in.Points < 0 {
		return model.QuestionFull{}, util.NewValidationError("invalid question fields",
			util.FieldError{Field: "points", Error: "must not be negative"})
	}

	if _, err := s.TestRepo.FindByID(ctx, *in.TestID); err != nil {
		return model.QuestionFull{}, err
	}

	q := &model.Question{TestID: *in.TestID, Points: 1}
	in.apply(q)
	if in.OrderNumber == nil {
		next, err := s.QuestionRepo.NextOrderNumber(ctx, q.TestID)
		if err != nil {
			return model.QuestionFull{}, err
		}
		q.OrderNumber = next
	}

	if err := s.QuestionRepo.Create(ctx, q); err != nil {
		return model.QuestionFull{}, err
	}
	return q.Project(), nil
}

// Update never moves a question to another test.
func (s *QuestionService) Update(ctx context.Context, id uint, in QuestionInput) (model.QuestionFull, error) {
	q, err := s.QuestionRepo.FindByID(ctx, id)
	if err != nil {
		return model.QuestionFull{}, err
	}
	if in.TestID != nil && *in.TestID != q.TestID {
		return model.QuestionFull{}, util.NewValidationError("question cannot change test",
			util.FieldError{Field: "test_id", Error: "is immutable"})
	}
	in.apply(q)
	if err := s.QuestionRepo.Save(ctx, q); err != nil {
		return model.QuestionFull{}, err
	}
	return q.Project(), nil
}

func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	return s.QuestionRepo.Delete(ctx, id)
}
