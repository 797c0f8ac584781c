package service

import (
	"context"
	"encoding/json"
	"errors"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(id, testID uint, order int) model.Question {
	q := model.Question{
		TestID:        testID,
		QuestionType:  model.QuestionTypeMultipleChoice,
		QuestionText:  "question",
		CorrectAnswer: "2",
		TestCases:     []byte(`[{"input":"1","output":"1"}]`),
		Explanation:   "because",
		Points:        1,
		OrderNumber:   order,
	}
	q.ID = id
	return q
}

func attemptWithScope(t *testing.T, id, testID, studentID uint, scope model.QuestionScope) *model.TestAttempt {
	t.Helper()
	a := &model.TestAttempt{
		TestID:    testID,
		StudentID: studentID,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now(),
	}
	a.ID = id
	require.NoError(t, a.SetScope(scope))
	return a
}

// test 32 holds questions 101..105; question 900 belongs to test 99.
func newSelectorFixture(t *testing.T, attempts ...*model.TestAttempt) *QuestionSelector {
	t.Helper()
	tests := &memTests{tests: map[uint]*model.Test{
		32: {Title: "Algebra", IsActive: true},
		99: {Title: "Other", IsActive: true},
		50: {Title: "Empty", IsActive: true},
	}}
	// stored out of order on purpose
	questions := &memQuestions{questions: []model.Question{
		question(104, 32, 4),
		question(101, 32, 1),
		question(105, 32, 5),
		question(103, 32, 3),
		question(102, 32, 2),
		question(900, 99, 1),
	}}
	return NewQuestionSelector(tests, questions, newMemAttempts(attempts...))
}

func publicIDs(qs []model.QuestionPublic) []uint {
	ids := make([]uint, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func fullIDs(qs []model.QuestionFull) []uint {
	ids := make([]uint, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestSelectStudentSubset(t *testing.T) {
	attemptID := uint(45)
	sel := newSelectorFixture(t, attemptWithScope(t, attemptID, 32, 7, model.QuestionSubset([]uint{102, 104})))

	res, err := sel.Select(context.Background(), SelectRequest{
		TestID:    32,
		AttemptID: &attemptID,
		Requester: Requester{UserID: 7, Role: model.Student},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{102, 104}, publicIDs(res.Public))
	assert.Nil(t, res.Full)

	raw, err := json.Marshal(res.Payload())
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, q := range decoded {
		assert.NotContains(t, q, "correct_answer")
		assert.NotContains(t, q, "test_cases")
		assert.NotContains(t, q, "explanation")
	}
}

func TestSelectTeacherSeesEverything(t *testing.T) {
	sel := newSelectorFixture(t)

	for _, role := range []model.UserRole{model.Teacher, model.Admin} {
		t.Run(string(role), func(t *testing.T) {
			res, err := sel.Select(context.Background(), SelectRequest{
				TestID:    32,
				Requester: Requester{UserID: 1, Role: role},
			})
			require.NoError(t, err)
			assert.Equal(t, []uint{101, 102, 103, 104, 105}, fullIDs(res.Full))

			raw, err := json.Marshal(res.Payload())
			require.NoError(t, err)
			var decoded []map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &decoded))
			require.Len(t, decoded, 5)
			for _, q := range decoded {
				assert.Equal(t, "2", q["correct_answer"])
				assert.Contains(t, q, "test_cases")
			}
		})
	}
}

func TestSelectStudentAllScope(t *testing.T) {
	sel := newSelectorFixture(t, attemptWithScope(t, 46, 32, 8, model.AllQuestions()))

	res, err := sel.Select(context.Background(), SelectRequest{
		TestID:    32,
		Requester: Requester{UserID: 8, Role: model.Student},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{101, 102, 103, 104, 105}, publicIDs(res.Public))
	assert.True(t, res.Scope.IsAll())
}

func TestSelectDropsForeignQuestions(t *testing.T) {
	attemptID := uint(47)
	sel := newSelectorFixture(t, attemptWithScope(t, attemptID, 32, 9, model.QuestionSubset([]uint{900, 103, 777})))

	res, err := sel.Select(context.Background(), SelectRequest{
		TestID:    32,
		AttemptID: &attemptID,
		Requester: Requester{UserID: 9, Role: model.Student},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{103}, publicIDs(res.Public))
}

func TestSelectEmptySubsetIsNotAll(t *testing.T) {
	attemptID := uint(48)
	sel := newSelectorFixture(t, attemptWithScope(t, attemptID, 32, 10, model.QuestionSubset(nil)))

	res, err := sel.Select(context.Background(), SelectRequest{
		TestID:    32,
		AttemptID: &attemptID,
		Requester: Requester{UserID: 10, Role: model.Student},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Public)
	assert.NotNil(t, res.Public)
}

func TestSelectOrderingTiesByID(t *testing.T) {
	tests := &memTests{tests: map[uint]*model.Test{1: {IsActive: true}}}
	questions := &memQuestions{questions: []model.Question{
		question(30, 1, 2),
		question(12, 1, 1),
		question(11, 1, 1),
		question(20, 1, 0),
	}}
	sel := NewQuestionSelector(tests, questions, newMemAttempts())

	res, err := sel.Select(context.Background(), SelectRequest{TestID: 1, Requester: Requester{Role: model.Teacher}})
	require.NoError(t, err)
	assert.Equal(t, []uint{20, 11, 12, 30}, fullIDs(res.Full))
}

func TestSelectErrors(t *testing.T) {
	otherAttempt := uint(49)
	sel := newSelectorFixture(t, attemptWithScope(t, otherAttempt, 32, 11, model.AllQuestions()))
	ctx := context.Background()

	t.Run("missing test id", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{Requester: Requester{Role: model.Teacher}})
		var verr *util.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "test_id", verr.Fields[0].Field)
	})

	t.Run("unknown test", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{TestID: 404, Requester: Requester{Role: model.Teacher}})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("student without attempt", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{TestID: 32, Requester: Requester{UserID: 12, Role: model.Student}})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("someone else's attempt", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{
			TestID:    32,
			AttemptID: &otherAttempt,
			Requester: Requester{UserID: 12, Role: model.Student},
		})
		assert.ErrorIs(t, err, util.ErrAttemptNotFound)
	})

	t.Run("attempt of another test", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{
			TestID:    99,
			AttemptID: &otherAttempt,
			Requester: Requester{UserID: 11, Role: model.Student},
		})
		assert.ErrorIs(t, err, util.ErrAttemptNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := sel.Select(ctx, SelectRequest{TestID: 32, Requester: Requester{Role: "guest"}})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestSelectTestWithoutQuestions(t *testing.T) {
	sel := newSelectorFixture(t)
	res, err := sel.Select(context.Background(), SelectRequest{TestID: 50, Requester: Requester{Role: model.Admin}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}
