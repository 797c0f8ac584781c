package service

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"
	"strings"
	"time"
)

type TestService struct {
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
}

func NewTestService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository) *TestService {
	return &TestService{TestRepo: testRepo, QuestionRepo: questionRepo}
}

// TestInput carries both create and partial update payloads; nil means
// "leave unchanged".
type TestInput struct {
	CourseID            *uint      `json:"course_id"`
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	QuizType            *string    `json:"quiz_type"`
	TestType            *string    `json:"test_type"`
	DurationMinutes     *int       `json:"duration_minutes"`
	StartTime           *time.Time `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	PassingScore        *int       `json:"passing_score"`
	QuestionsToAsk      *int       `json:"questions_to_ask"`
	IsActive            *bool      `json:"is_active"`
	MaxAttempts         *int       `json:"max_attempts"`
	PlatformRestriction *string    `json:"platform_restriction"`
	AllowedBrowsers     *string    `json:"allowed_browsers"`
	DetectWindowSwitch  *bool      `json:"detect_window_switch"`
	PreventScreenshot   *bool      `json:"prevent_screenshot"`
	DetectPhoneCall     *bool      `json:"detect_phone_call"`
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func (in TestInput) validateCreate() error {
	var missing []string
	if blank(in.Title) {
		missing = append(missing, "title")
	}
	if blank(in.QuizType) {
		missing = append(missing, "quiz_type")
	}
	if blank(in.TestType) {
		missing = append(missing, "test_type")
	}
	if in.DurationMinutes == nil {
		missing = append(missing, "duration_minutes")
	}
	if len(missing) > 0 {
		return util.Required(missing...)
	}
	return in.validateValues()
}

func (in TestInput) validateValues() error {
	var flds []util.FieldError
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		flds = append(flds, util.FieldError{Field: "duration_minutes", Error: "must be positive"})
	}
	if in.PassingScore != nil && (*in.PassingScore < 0 || *in.PassingScore > 100) {
		flds = append(flds, util.FieldError{Field: "passing_score", Error: "must be between 0 and 100"})
	}
	if in.QuestionsToAsk != nil && *in.QuestionsToAsk < 0 {
		flds = append(flds, util.FieldError{Field: "questions_to_ask", Error: "must not be negative"})
	}
	if in.MaxAttempts != nil && *in.MaxAttempts < 0 {
		flds = append(flds, util.FieldError{Field: "max_attempts", Error: "must not be negative"})
	}
	if in.StartTime != nil && in.EndTime != nil && in.EndTime.Before(*in.StartTime) {
		flds = append(flds, util.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	if len(flds) > 0 {
		return util.NewValidationError("invalid test fields", flds...)
	}
	return nil
}

func (in TestInput) apply(t *model.Test) {
	if in.CourseID != nil {
		t.CourseID = in.CourseID
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.QuizType != nil {
		t.QuizType = *in.QuizType
	}
	if in.TestType != nil {
		t.TestType = *in.TestType
	}
	if in.DurationMinutes != nil {
		t.DurationMinutes = *in.DurationMinutes
	}
	if in.StartTime != nil {
		t.StartTime = in.StartTime
	}
	if in.EndTime != nil {
		t.EndTime = in.EndTime
	}
	if in.PassingScore != nil {
		t.PassingScore = *in.PassingScore
	}
	if in.QuestionsToAsk != nil {
		if *in.QuestionsToAsk == 0 {
			t.QuestionsToAsk = nil
		} else {
			t.QuestionsToAsk = in.QuestionsToAsk
		}
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.MaxAttempts != nil {
		t.MaxAttempts = *in.MaxAttempts
	}
	if in.PlatformRestriction != nil {
		t.PlatformRestriction = *in.PlatformRestriction
	}
	if in.AllowedBrowsers != nil {
		t.AllowedBrowsers = *in.AllowedBrowsers
	}
	if in.DetectWindowSwitch != nil {
		t.DetectWindowSwitch = *in.DetectWindowSwitch
	}
	if in.PreventScreenshot != nil {
		t.PreventScreenshot = *in.PreventScreenshot
	}
	if in.DetectPhoneCall != nil {
		t.DetectPhoneCall = *in.DetectPhoneCall
	}
}

// List shows students active tests only.
func (s *TestService) List(ctx context.Context, who Requester, courseID *uint) ([]repository.TestListRow, error) {
	return s.TestRepo.List(ctx, repository.TestFilter{
		CourseID:   courseID,
		ActiveOnly: !who.Role.IsStaff(),
	})
}

func (s *TestService) Get(ctx context.Context, id uint, who Requester) (*model.Test, error) {
	t, err := s.TestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.Role.IsStaff() && !t.IsActive {
		return nil, util.ErrTestNotFound
	}
	return t, nil
}

func (s *TestService) Create(ctx context.Context, in TestInput, creatorID uint) (*model.Test, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	t := &model.Test{IsActive: true, CreatedBy: &creatorID}
	in.apply(t)
	if err := s.TestRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TestService) Update(ctx context.Context, id uint, in TestInput) (*model.Test, error) {
	if err := in.validateValues(); err != nil {
		return nil, err
	}
	t, err := s.TestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)
	if err := s.TestRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TestService) Delete(ctx context.Context, id uint) error {
	return s.TestRepo.Delete(ctx, id)
}
