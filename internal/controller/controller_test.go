package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  []util.FieldError `json:"errors"`
}

func do(t *testing.T, r http.Handler, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// asUser stands in for AuthMiddleware.
func asUser(id uint, role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.SetUserInContext(c, &util.Claims{UserID: id, Role: role})
		c.Next()
	}
}

type stubTests map[uint]*model.Test

func (s stubTests) FindByID(_ context.Context, id uint) (*model.Test, error) {
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, util.ErrTestNotFound
}

type stubQuestions []model.Question

func (s stubQuestions) ListByTest(_ context.Context, testID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range s {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s stubQuestions) ListByIDs(ctx context.Context, testID uint, ids []uint) ([]model.Question, error) {
	all, _ := s.ListByTest(ctx, testID)
	var out []model.Question
	for _, q := range all {
		for _, id := range ids {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

// stubAttempts only serves reads; the selector never writes.
type stubAttempts struct {
	service.AttemptStore
	byID map[uint]*model.TestAttempt
}

func (s stubAttempts) FindByID(_ context.Context, id uint) (*model.TestAttempt, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, util.ErrAttemptNotFound
}

func (s stubAttempts) FindLatest(_ context.Context, testID, studentID uint) (*model.TestAttempt, error) {
	for _, a := range s.byID {
		if a.TestID == testID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, util.ErrAttemptNotFound
}

func questionRouter(t *testing.T, who gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var qs stubQuestions
	for i := uint(1); i <= 5; i++ {
		q := model.Question{TestID: 32, QuestionText: "q", CorrectAnswer: "a", TestCases: []byte(`[]`), Points: 1, OrderNumber: int(i)}
		q.ID = 100 + i
		qs = append(qs, q)
	}
	attempt := &model.TestAttempt{TestID: 32, StudentID: 7, Status: model.AttemptInProgress}
	attempt.ID = 45
	require.NoError(t, attempt.SetScope(model.QuestionSubset([]uint{102, 104})))

	selector := service.NewQuestionSelector(
		stubTests{32: {Title: "t", IsActive: true}},
		qs,
		stubAttempts{byID: map[uint]*model.TestAttempt{45: attempt}},
	)
	ctrl := NewQuestionController(selector, nil)

	r := gin.New()
	r.GET("/api/questions", who, ctrl.List)
	return r
}

func TestListQuestionsStudent(t *testing.T) {
	r := questionRouter(t, asUser(7, model.Student))

	w, env := do(t, r, http.MethodGet, "/api/questions?test_id=32&attempt_id=45", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var qs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	require.Len(t, qs, 2)
	assert.EqualValues(t, 102, qs[0]["id"])
	assert.EqualValues(t, 104, qs[1]["id"])
	for _, q := range qs {
		assert.NotContains(t, q, "correct_answer")
		assert.NotContains(t, q, "test_cases")
	}
}

func TestListQuestionsTeacher(t *testing.T) {
	r := questionRouter(t, asUser(1, model.Teacher))

	w, env := do(t, r, http.MethodGet, "/api/questions?test_id=32", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var qs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	require.Len(t, qs, 5)
	for i, q := range qs {
		assert.EqualValues(t, 101+i, q["id"])
		assert.Equal(t, "a", q["correct_answer"])
	}
}

func TestListQuestionsErrors(t *testing.T) {
	r := questionRouter(t, asUser(8, model.Student))

	w, env := do(t, r, http.MethodGet, "/api/questions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "test_id", env.Errors[0].Field)

	w, _ = do(t, r, http.MethodGet, "/api/questions?test_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// student 8 has no attempt on test 32
	w, _ = do(t, r, http.MethodGet, "/api/questions?test_id=32", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// attempt 45 belongs to student 7
	w, _ = do(t, r, http.MethodGet, "/api/questions?test_id=32&attempt_id=45", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/questions?test_id=404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListQuestionsUnauthenticated(t *testing.T) {
	r := questionRouter(t, func(c *gin.Context) { c.Next() })
	w, _ := do(t, r, http.MethodGet, "/api/questions?test_id=32", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
