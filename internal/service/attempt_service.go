package service

import (
	"context"
	"encoding/json"
	"errors"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"
	"quiz_portal_backend/pkg/monitoring"
	"quiz_portal_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const WarnNoQuestions = "test has no questions"

type AttemptService struct {
	Tests     TestStore
	Questions QuestionStore
	Attempts  AttemptStore
	Sampler   Sampler
	Now       func() time.Time
}

func NewAttemptService(tests TestStore, questions QuestionStore, attempts AttemptStore, sampler Sampler) *AttemptService {
	return &AttemptService{
		Tests:     tests,
		Questions: questions,
		Attempts:  attempts,
		Sampler:   sampler,
		Now:       time.Now,
	}
}

type StartResult struct {
	Attempt  *model.TestAttempt `json:"attempt"`
	Resumed  bool               `json:"resumed"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Start opens an attempt for the student, or returns the one already in
// progress. The question subset is frozen here and never rewritten.
func (s *AttemptService) Start(ctx context.Context, testID, studentID uint) (*StartResult, error) {
	if testID == 0 {
		return nil, util.Required("test_id")
	}

	ctx, span := tracing.Start(ctx, "AttemptService.Start")
	defer span.End()
	span.SetAttributes(attribute.Int64("test.id", int64(testID)))

	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if !test.OpenAt(now) {
		return nil, util.ErrTestNotAvailable
	}

	active, err := s.Attempts.FindActive(ctx, testID, studentID)
	switch {
	case err == nil:
		monitoring.AttemptsStarted.WithLabelValues("resumed").Inc()
		return &StartResult{Attempt: active, Resumed: true}, nil
	case !errors.Is(err, util.ErrNotFound):
		return nil, err
	}

	if test.MaxAttempts > 0 {
		n, err := s.Attempts.CountGraded(ctx, testID, studentID)
		if err != nil {
			return nil, err
		}
		if n >= int64(test.MaxAttempts) {
			return nil, util.ErrAttemptLimit
		}
	}

	pool, err := s.Questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	sortQuestions(pool)

	scope := model.AllQuestions()
	if n := test.QuestionsToAsk; n != nil && *n > 0 && *n < len(pool) {
		scope = model.QuestionSubset(s.Sampler.Sample(pool, *n))
	}

	key := model.ActiveAttemptKey(testID, studentID)
	attempt := &model.TestAttempt{
		TestID:    testID,
		StudentID: studentID,
		Status:    model.AttemptCreated,
		StartedAt: now,
		ActiveKey: &key,
	}
	if err := attempt.SetScope(scope); err != nil {
		return nil, err
	}
	attempt.Status = model.AttemptInProgress

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		if !errors.Is(err, util.ErrConflict) {
			return nil, err
		}
		// lost the race against a concurrent start
		active, ferr := s.Attempts.FindActive(ctx, testID, studentID)
		if ferr != nil {
			return nil, err
		}
		monitoring.AttemptsStarted.WithLabelValues("resumed").Inc()
		return &StartResult{Attempt: active, Resumed: true}, nil
	}

	res := &StartResult{Attempt: attempt}
	if len(pool) == 0 {
		logger.Log.Warn("Attempt created for a test without questions",
			zap.Uint("test_id", testID),
			zap.Uint("attempt_id", attempt.ID))
		res.Warnings = append(res.Warnings, WarnNoQuestions)
	}
	monitoring.AttemptsStarted.WithLabelValues("created").Inc()
	return res, nil
}

// Get returns an attempt. Students only see their own.
func (s *AttemptService) Get(ctx context.Context, attemptID uint, who Requester) (*model.TestAttempt, error) {
	a, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !who.Role.IsStaff() && a.StudentID != who.UserID {
		return nil, util.ErrAttemptNotFound
	}
	return a, nil
}

func (s *AttemptService) ListByTest(ctx context.Context, testID uint) ([]model.TestAttempt, error) {
	if _, err := s.Tests.FindByID(ctx, testID); err != nil {
		return nil, err
	}
	return s.Attempts.ListByTest(ctx, testID)
}

type SubmitResult struct {
	Attempt *model.TestAttempt `json:"attempt"`
	Grade   model.GradeResult  `json:"grade"`
}

// Submit grades the attempt against the questions it was allowed to see and
// finalizes it. A second submission is rejected with util.ErrAlreadyGraded.
func (s *AttemptService) Submit(ctx context.Context, attemptID, studentID uint, answers map[int]interface{}) (res *SubmitResult, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.Submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("attempt.id", int64(attemptID)))

	defer func() {
		switch {
		case err == nil:
			monitoring.AttemptsFinalized.WithLabelValues("graded").Inc()
		case errors.Is(err, util.ErrConflict):
			monitoring.AttemptsFinalized.WithLabelValues("conflict").Inc()
		default:
			monitoring.AttemptsFinalized.WithLabelValues("error").Inc()
		}
	}()

	a, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.StudentID != studentID {
		return nil, util.ErrAttemptNotFound
	}
	if a.Status.Terminal() {
		return nil, util.ErrAlreadyGraded
	}

	test, err := s.Tests.FindByID(ctx, a.TestID)
	if err != nil {
		return nil, err
	}
	scope, err := a.Scope()
	if err != nil {
		return nil, err
	}
	questions, err := scopedQuestions(ctx, s.Questions, a.TestID, scope)
	if err != nil {
		return nil, err
	}

	grade := Grade(definitionFor(questions), answers)
	percentage := grade.Percentage()
	if grade.MaxScore == 0 && grade.Total > 0 {
		percentage = float64(grade.Correct) * 100 / float64(grade.Total)
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, util.NewValidationError("answers are not serializable", util.FieldError{Field: "answers", Error: err.Error()})
	}
	resultJSON, err := json.Marshal(grade.Details)
	if err != nil {
		return nil, err
	}

	outcome := model.AttemptOutcome{
		Grade:       grade,
		Percentage:  percentage,
		Passed:      percentage >= float64(test.PassingScore),
		Answers:     datatypes.JSON(answersJSON),
		Result:      datatypes.JSON(resultJSON),
		SubmittedAt: s.Now(),
	}
	if err := s.Attempts.Finalize(ctx, a.ID, outcome); err != nil {
		return nil, err
	}

	applyOutcome(a, outcome)
	logger.Log.Info("Attempt graded",
		zap.Uint("attempt_id", a.ID),
		zap.Uint("test_id", a.TestID),
		zap.Int("correct", grade.Correct),
		zap.Int("total", grade.Total))
	return &SubmitResult{Attempt: a, Grade: grade}, nil
}

// RecordViolation adds one anti-cheat event to an attempt in progress.
func (s *AttemptService) RecordViolation(ctx context.Context, attemptID, studentID uint, kind model.ViolationKind, details string) (*model.TestAttempt, error) {
	if !kind.Valid() {
		return nil, util.NewValidationError("unknown violation type",
			util.FieldError{Field: "violation_type", Error: "must be one of window_switch, screenshot_attempt, phone_call"})
	}

	a, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.StudentID != studentID {
		return nil, util.ErrAttemptNotFound
	}
	if a.Status.Terminal() {
		return nil, util.ErrAlreadyGraded
	}

	v := &model.TestViolation{
		AttemptID:     a.ID,
		TestID:        a.TestID,
		StudentID:     a.StudentID,
		ViolationType: kind,
		Details:       details,
		OccurredAt:    s.Now(),
	}
	if err := s.Attempts.RecordViolation(ctx, v); err != nil {
		return nil, err
	}
	monitoring.ViolationsRecorded.WithLabelValues(string(kind)).Inc()

	return s.Attempts.FindByID(ctx, a.ID)
}

// definitionFor keys the answer sheet by question id.
func definitionFor(qs []model.Question) model.QuizDefinition {
	def := model.QuizDefinition{Questions: make([]model.GradeQuestion, 0, len(qs))}
	for _, q := range qs {
		def.Questions = append(def.Questions, model.GradeQuestion{
			Number:        int(q.ID),
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	return def
}

func applyOutcome(a *model.TestAttempt, o model.AttemptOutcome) {
	submitted := o.SubmittedAt
	a.Status = model.AttemptGraded
	a.SubmittedAt = &submitted
	a.CorrectCount = o.Grade.Correct
	a.TotalCount = o.Grade.Total
	a.Score = o.Grade.Score
	a.MaxScore = o.Grade.MaxScore
	a.Percentage = o.Percentage
	a.Passed = o.Passed
	a.Answers = o.Answers
	a.Result = o.Result
	a.ActiveKey = nil
}
