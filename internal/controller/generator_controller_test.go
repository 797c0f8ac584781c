package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/kvstore"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProvider struct {
	text string
	err  error
}

func (p fixedProvider) GenerateContent(context.Context, string) (string, error) {
	return p.text, p.err
}

func generatorRouter(p service.ContentProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewQuizGeneratorService(p, service.NewQuizStore(kvstore.NewMemory()), service.RetryPolicy{})
	ctrl := NewGeneratorController(svc)

	r := gin.New()
	g := r.Group("/api/generator")
	g.POST("/generate", ctrl.Generate)
	g.GET("/quizzes", ctrl.ListQuizzes)
	g.POST("/quizzes", ctrl.SaveQuiz)
	g.GET("/quizzes/:id", ctrl.GetQuiz)
	g.PUT("/quizzes/:id", ctrl.SaveQuiz)
	g.DELETE("/quizzes/:id", ctrl.RemoveQuiz)
	g.GET("/quizzes/:id/attempts", ctrl.ListAttempts)
	g.POST("/quizzes/:id/attempts", ctrl.SubmitAttempt)
	g.GET("/quizzes/:id/attempt-limit", ctrl.GetAttemptLimit)
	g.PUT("/quizzes/:id/attempt-limit", ctrl.SetAttemptLimit)
	g.GET("/session", ctrl.GetSession)
	g.PUT("/session", ctrl.SetSession)
	return r
}

func TestGenerateMessages(t *testing.T) {
	tests := []struct {
		name     string
		provider fixedProvider
		body     interface{}
		code     int
		message  string
	}{
		{
			name:     "invalid input",
			provider: fixedProvider{},
			body:     service.GenerateRequest{Topic: " ", Number: 2, Type: "topic"},
			code:     http.StatusBadRequest,
			message:  service.MsgInvalidInput,
		},
		{
			name:     "busy",
			provider: fixedProvider{err: fmt.Errorf("%w: overloaded", util.ErrUpstreamUnavailable)},
			body:     service.GenerateRequest{Topic: "go", Number: 2, Type: "topic"},
			code:     http.StatusServiceUnavailable,
			message:  util.MsgServiceBusy,
		},
		{
			name:     "malformed",
			provider: fixedProvider{text: "not json"},
			body:     service.GenerateRequest{Topic: "go", Number: 2, Type: "topic"},
			code:     http.StatusBadGateway,
			message:  util.MsgGenericError,
		},
		{
			name:     "ok",
			provider: fixedProvider{text: `[{"questionNumber":1,"questionText":"q","choices":[{"id":1,"text":"a"},{"id":2,"text":"b"}],"answer":1,"difficulty":"hard"}]`},
			body:     service.GenerateRequest{Topic: "go", Number: 1, Type: "paragraph"},
			code:     http.StatusOK,
			message:  "success",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, generatorRouter(tc.provider), http.MethodPost, "/api/generator/generate", tc.body)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestGeneratorQuizLifecycle(t *testing.T) {
	r := generatorRouter(fixedProvider{})

	quiz := model.Quiz{
		Title: "Arithmetic",
		Questions: []model.GeneratedQuestion{
			{QuestionNumber: 1, QuestionText: "1+1", Choices: []model.Choice{{ID: 1, Text: "1"}, {ID: 2, Text: "2"}}, Answer: 2},
			{QuestionNumber: 2, QuestionText: "2+2", Choices: []model.Choice{{ID: 3, Text: "3"}, {ID: 4, Text: "4"}}, Answer: 4},
		},
	}
	w, env := do(t, r, http.MethodPost, "/api/generator/quizzes", quiz)
	require.Equal(t, http.StatusOK, w.Code)
	var saved model.Quiz
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	require.NotEmpty(t, saved.ID)

	w, _ = do(t, r, http.MethodPut, "/api/generator/quizzes/"+saved.ID+"/attempt-limit", AttemptLimitRequest{Limit: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/generator/quizzes/"+saved.ID+"/attempts", map[string]interface{}{
		"user":    "ada",
		"answers": map[string]interface{}{"1": "2", "2": 3},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var attempt model.QuizAttempt
	require.NoError(t, json.Unmarshal(env.Data, &attempt))
	assert.Equal(t, 1, attempt.Result.Correct)
	assert.Equal(t, 2, attempt.Result.Total)

	w, _ = do(t, r, http.MethodPost, "/api/generator/quizzes/"+saved.ID+"/attempts", QuizAttemptRequest{User: "ada"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/generator/quizzes/"+saved.ID+"/attempts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []model.QuizAttempt
	require.NoError(t, json.Unmarshal(env.Data, &attempts))
	assert.Len(t, attempts, 1)

	w, _ = do(t, r, http.MethodDelete, "/api/generator/quizzes/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/generator/quizzes/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGeneratorSession(t *testing.T) {
	r := generatorRouter(fixedProvider{})

	w, _ := do(t, r, http.MethodPut, "/api/generator/session", SessionRequest{User: "ada", Role: model.Teacher})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/generator/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session SessionRequest
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, SessionRequest{User: "ada", Role: model.Teacher}, session)

	w, _ = do(t, r, http.MethodPut, "/api/generator/session", SessionRequest{User: "ada", Role: "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
