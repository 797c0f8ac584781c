package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"
	"quiz_portal_backend/pkg/monitoring"
	"quiz_portal_backend/pkg/tracing"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const MsgInvalidInput = "Please, Enter a Valid Input."

// ContentProvider turns a prompt into JSON text. Overload conditions must
// be reported as util.ErrUpstreamUnavailable so they can be retried.
type ContentProvider interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

type GenerateRequest struct {
	Topic  string `json:"topic"`
	Number int    `json:"number"`
	Type   string `json:"type"` // topic | paragraph
}

var fenceRegex = regexp.MustCompile("(?i)^```(?:json)?\\s*\\n([\\s\\S]*?)\\n```$")

type QuizGeneratorService struct {
	Provider ContentProvider
	Store    *QuizStore

	validate *validator.Validate
	mu       sync.RWMutex
	policy   RetryPolicy
	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewQuizGeneratorService(provider ContentProvider, store *QuizStore, policy RetryPolicy) *QuizGeneratorService {
	return &QuizGeneratorService{
		Provider: provider,
		Store:    store,
		validate: validator.New(),
		policy:   policy,
		sleep:    sleepCtx,
	}
}

func (s *QuizGeneratorService) RetryPolicy() RetryPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// SetRetryPolicy is called on config reload.
func (s *QuizGeneratorService) SetRetryPolicy(p RetryPolicy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
	logger.Log.Info("Generator retry policy updated",
		zap.Int("max_retries", p.MaxRetries),
		zap.Duration("base_delay", p.BaseDelay))
}

func (r GenerateRequest) validate() error {
	if strings.TrimSpace(r.Topic) == "" || strings.TrimSpace(r.Type) == "" || r.Number < 1 {
		return util.NewValidationError(MsgInvalidInput)
	}
	return nil
}

func buildPrompt(r GenerateRequest) string {
	return fmt.Sprintf(`Based on the following %[1]s, generate exactly %[2]d multiple-choice questions with:
 - A numbered question (questionNumber)
 - Clear question text (questionText)
 - 4-5 choices each as {id, text}
 - An integer 'answer' matching the correct choice id
 - A difficulty of 'easy' | 'medium' | 'hard' (30%% easy, 50%% medium, 20%% hard)
 - An explanation string explaining the correct answer

Return strict JSON matching the provided schema, not markdown or code fences.

%[1]s:
"%[3]s"`, r.Type, r.Number, r.Topic)
}

// Generate asks the provider for questions. Only unavailable responses are
// retried, with the delay doubling from the policy's base delay.
func (s *QuizGeneratorService) Generate(ctx context.Context, req GenerateRequest) ([]model.GeneratedQuestion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "QuizGeneratorService.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int("quiz.number", req.Number), attribute.String("quiz.type", req.Type))

	text, err := s.generateWithRetry(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}
	return s.parseQuestions(text)
}

func (s *QuizGeneratorService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	policy := s.RetryPolicy()
	delay := policy.BaseDelay

	for attempt := 0; ; attempt++ {
		text, err := s.Provider.GenerateContent(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, util.ErrUpstreamUnavailable) || attempt >= policy.MaxRetries {
			return "", err
		}

		logger.Log.Warn("Content provider unavailable, retrying",
			zap.Duration("delay", delay),
			zap.Int("retries_left", policy.MaxRetries-attempt))
		monitoring.GenerationRetries.Inc()

		if err := s.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

// stripFence removes a surrounding ```json fence if present.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if m := fenceRegex.FindStringSubmatch(s); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return s
}

func (s *QuizGeneratorService) parseQuestions(text string) ([]model.GeneratedQuestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response", util.ErrMalformedResponse)
	}

	var questions []model.GeneratedQuestion
	if err := json.Unmarshal([]byte(stripFence(text)), &questions); err != nil {
		logger.Log.Error("Failed to parse provider response", zap.String("text", text), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedResponse, err)
	}
	for i := range questions {
		if err := s.validate.Struct(&questions[i]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", util.ErrMalformedResponse, i+1, err)
		}
		if !hasChoice(questions[i]) {
			return nil, fmt.Errorf("%w: question %d: answer %d is not a choice", util.ErrMalformedResponse, i+1, questions[i].Answer)
		}
	}
	return questions, nil
}

func hasChoice(q model.GeneratedQuestion) bool {
	for _, c := range q.Choices {
		if c.ID == q.Answer {
			return true
		}
	}
	return false
}

func (s *QuizGeneratorService) SaveQuiz(ctx context.Context, quiz model.Quiz) (model.Quiz, error) {
	if strings.TrimSpace(quiz.Title) == "" {
		return model.Quiz{}, util.Required("title")
	}
	if len(quiz.Questions) == 0 {
		return model.Quiz{}, util.Required("questions")
	}
	for i := range quiz.Questions {
		if err := s.validate.Struct(&quiz.Questions[i]); err != nil {
			return model.Quiz{}, util.NewValidationError("invalid question",
				util.FieldError{Field: fmt.Sprintf("questions[%d]", i), Error: err.Error()})
		}
	}
	return s.Store.SaveQuiz(ctx, quiz)
}

// effectiveLimit prefers the limit embedded in the quiz over the limits map.
func (s *QuizGeneratorService) effectiveLimit(ctx context.Context, quiz *model.Quiz) (int, error) {
	if quiz.AttemptLimit > 0 {
		return quiz.AttemptLimit, nil
	}
	return s.Store.AttemptLimit(ctx, quiz.ID)
}

// SubmitAttempt grades answers against the quiz's embedded key and stores
// the attempt. An empty user means the current session user.
func (s *QuizGeneratorService) SubmitAttempt(ctx context.Context, quizID, user string, answers map[int]interface{}) (model.QuizAttempt, error) {
	quiz, err := s.Store.GetQuiz(ctx, quizID)
	if err != nil {
		return model.QuizAttempt{}, err
	}
	if user == "" {
		if user, err = s.Store.CurrentUser(ctx); err != nil {
			return model.QuizAttempt{}, err
		}
	}

	limit, err := s.effectiveLimit(ctx, quiz)
	if err != nil {
		return model.QuizAttempt{}, err
	}

	if answers == nil {
		answers = map[int]interface{}{}
	}
	return s.Store.SaveAttemptWithin(ctx, model.QuizAttempt{
		QuizID:  quiz.ID,
		User:    user,
		Answers: answers,
		Result:  Grade(quiz.Definition(), answers),
	}, limit)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
