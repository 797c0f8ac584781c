package service

import (
	"context"
	"errors"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"
	"quiz_portal_backend/pkg/monitoring"
	"quiz_portal_backend/pkg/tracing"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type SelectRequest struct {
	TestID    uint
	AttemptID *uint
	Requester Requester
}

// QuestionSelection holds exactly one of the two projections, depending on
// the requester's role.
type QuestionSelection struct {
	TestID    uint
	AttemptID *uint
	Role      model.UserRole
	Scope     model.QuestionScope
	Full      []model.QuestionFull
	Public    []model.QuestionPublic
}

// Payload is what goes on the wire.
func (s *QuestionSelection) Payload() interface{} {
	if s.Role.IsStaff() {
		return s.Full
	}
	return s.Public
}

func (s *QuestionSelection) Len() int {
	if s.Role.IsStaff() {
		return len(s.Full)
	}
	return len(s.Public)
}

type QuestionSelector struct {
	Tests     TestStore
	Questions QuestionStore
	Attempts  AttemptStore
}

func NewQuestionSelector(tests TestStore, questions QuestionStore, attempts AttemptStore) *QuestionSelector {
	return &QuestionSelector{Tests: tests, Questions: questions, Attempts: attempts}
}

func (s *QuestionSelector) Select(ctx context.Context, req SelectRequest) (*QuestionSelection, error) {
	if req.TestID == 0 {
		return nil, util.Required("test_id")
	}
	if !req.Requester.Role.Valid() {
		return nil, util.ErrPermissionDenied
	}

	ctx, span := tracing.Start(ctx, "QuestionSelector.Select")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("test.id", int64(req.TestID)),
		attribute.String("requester.role", string(req.Requester.Role)),
	)

	if _, err := s.Tests.FindByID(ctx, req.TestID); err != nil {
		return nil, err
	}

	sel := &QuestionSelection{
		TestID: req.TestID,
		Role:   req.Requester.Role,
		Scope:  model.AllQuestions(),
	}

	if !req.Requester.Role.IsStaff() {
		attempt, err := s.resolveAttempt(ctx, req)
		if err != nil {
			return nil, err
		}
		scope, err := attempt.Scope()
		if err != nil {
			logger.Log.Error("Corrupt selected_questions on attempt",
				zap.Uint("attempt_id", attempt.ID),
				zap.Error(err))
			return nil, err
		}
		sel.AttemptID = &attempt.ID
		sel.Scope = scope
	}

	questions, err := scopedQuestions(ctx, s.Questions, req.TestID, sel.Scope)
	if err != nil {
		return nil, err
	}

	if req.Requester.Role.IsStaff() {
		sel.Full = make([]model.QuestionFull, 0, len(questions))
		for i := range questions {
			sel.Full = append(sel.Full, questions[i].Project())
		}
	} else {
		sel.Public = make([]model.QuestionPublic, 0, len(questions))
		for i := range questions {
			sel.Public = append(sel.Public, questions[i].Project().Public())
		}
	}

	monitoring.QuestionSelections.WithLabelValues(string(req.Requester.Role), scopeLabel(sel.Scope)).Inc()
	return sel, nil
}

// resolveAttempt finds the student's attempt for the test. An explicit
// attempt id must belong to both the student and the test.
func (s *QuestionSelector) resolveAttempt(ctx context.Context, req SelectRequest) (*model.TestAttempt, error) {
	if req.AttemptID != nil {
		a, err := s.Attempts.FindByID(ctx, *req.AttemptID)
		if err != nil {
			return nil, err
		}
		if a.TestID != req.TestID || a.StudentID != req.Requester.UserID {
			return nil, util.ErrAttemptNotFound
		}
		return a, nil
	}

	a, err := s.Attempts.FindLatest(ctx, req.TestID, req.Requester.UserID)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	return a, err
}

// scopedQuestions loads the questions of testID visible under scope, in
// display order. The stored subset is intersected with the test's own
// questions instead of being trusted.
func scopedQuestions(ctx context.Context, store QuestionStore, testID uint, scope model.QuestionScope) ([]model.Question, error) {
	var (
		qs  []model.Question
		err error
	)
	if scope.IsAll() {
		qs, err = store.ListByTest(ctx, testID)
	} else {
		qs, err = store.ListByIDs(ctx, testID, scope.IDs())
	}
	if err != nil {
		return nil, err
	}

	kept := qs[:0]
	for _, q := range qs {
		if q.TestID == testID && scope.Contains(q.ID) {
			kept = append(kept, q)
		}
	}
	if dropped := len(qs) - len(kept); dropped > 0 {
		logger.Log.Warn("Dropped questions outside attempt scope",
			zap.Uint("test_id", testID),
			zap.Int("dropped", dropped))
	}

	sortQuestions(kept)
	return kept, nil
}

func sortQuestions(qs []model.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].OrderNumber != qs[j].OrderNumber {
			return qs[i].OrderNumber < qs[j].OrderNumber
		}
		return qs[i].ID < qs[j].ID
	})
}

func scopeLabel(s model.QuestionScope) string {
	if s.IsAll() {
		return "all"
	}
	return "subset"
}
