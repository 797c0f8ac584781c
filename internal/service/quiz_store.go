package service

import (
	"context"
	"encoding/json"
	"errors"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/kvstore"
	"quiz_portal_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

const (
	KeyQuizzes       = "quizgen.quizzes.v1"
	KeyAttempts      = "quizgen.attempts.v1"
	KeyAttemptLimits = "quizgen.attemptLimits.v1" // quiz id -> limit
	KeyCurrentUser   = "quizgen.currentUser"
	KeyCurrentRole   = "quizgen.currentRole"
)

// QuizStore keeps generator quizzes and attempts as JSON documents under
// fixed keys of a kvstore.Store.
type QuizStore struct {
	kv kvstore.Store
	// serializes read-modify-write of a whole document
	mu sync.Mutex
}

func NewQuizStore(kv kvstore.Store) *QuizStore {
	return &QuizStore{kv: kv}
}

// read decodes key into out. Missing or unreadable documents leave out at
// its fallback value.
func (s *QuizStore) read(ctx context.Context, key string, out interface{}) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Log.Warn("Discarding unreadable generator document", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *QuizStore) write(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw)
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]model.Quiz, error) {
	quizzes := []model.Quiz{}
	if err := s.read(ctx, KeyQuizzes, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// SaveQuiz inserts or replaces by id, assigning id and createdAt when unset.
func (s *QuizStore) SaveQuiz(ctx context.Context, quiz model.Quiz) (model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.ListQuizzes(ctx)
	if err != nil {
		return model.Quiz{}, err
	}
	if quiz.ID == "" {
		quiz.ID = "q_" + model.GenerateUUID()
	}
	if quiz.CreatedAt == 0 {
		quiz.CreatedAt = model.NowMillis()
	}

	replaced := false
	for i := range quizzes {
		if quizzes[i].ID == quiz.ID {
			quizzes[i] = quiz
			replaced = true
			break
		}
	}
	if !replaced {
		quizzes = append(quizzes, quiz)
	}
	if err := s.write(ctx, KeyQuizzes, quizzes); err != nil {
		return model.Quiz{}, err
	}
	return quiz, nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	quizzes, err := s.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		if quizzes[i].ID == id {
			return &quizzes[i], nil
		}
	}
	return nil, util.ErrQuizNotFound
}

func (s *QuizStore) RemoveQuiz(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quizzes, err := s.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	kept := quizzes[:0]
	for _, q := range quizzes {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	return s.write(ctx, KeyQuizzes, kept)
}

func (s *QuizStore) ListAttempts(ctx context.Context) ([]model.QuizAttempt, error) {
	attempts := []model.QuizAttempt{}
	if err := s.read(ctx, KeyAttempts, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// SaveAttempt inserts or replaces by id. An attempt without a user is
// attributed to the current session user.
func (s *QuizStore) SaveAttempt(ctx context.Context, attempt model.QuizAttempt) (model.QuizAttempt, error) {
	return s.SaveAttemptWithin(ctx, attempt, 0)
}

// SaveAttemptWithin is SaveAttempt with the per-user limit checked in the
// same critical section as the write. limit 0 means unlimited.
func (s *QuizStore) SaveAttemptWithin(ctx context.Context, attempt model.QuizAttempt, limit int) (model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts, err := s.ListAttempts(ctx)
	if err != nil {
		return model.QuizAttempt{}, err
	}
	if attempt.ID == "" {
		attempt.ID = "a_" + model.GenerateUUID()
	}
	if attempt.User == "" {
		if attempt.User, err = s.CurrentUser(ctx); err != nil {
			return model.QuizAttempt{}, err
		}
	}
	if attempt.CreatedAt == 0 {
		attempt.CreatedAt = model.NowMillis()
	}

	replaced := false
	used := 0
	for i := range attempts {
		if attempts[i].ID == attempt.ID {
			attempts[i] = attempt
			replaced = true
			break
		}
		if attempts[i].QuizID == attempt.QuizID && attempts[i].User == attempt.User {
			used++
		}
	}
	if !replaced {
		if limit > 0 && attempt.User != "" && used >= limit {
			return model.QuizAttempt{}, util.ErrAttemptLimit
		}
		attempts = append(attempts, attempt)
	}
	if err := s.write(ctx, KeyAttempts, attempts); err != nil {
		return model.QuizAttempt{}, err
	}
	return attempt, nil
}

func (s *QuizStore) ListAttemptsForQuiz(ctx context.Context, quizID string) ([]model.QuizAttempt, error) {
	attempts, err := s.ListAttempts(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.QuizAttempt{}
	for _, a := range attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

// CountUserAttemptsForQuiz is 0 for an anonymous user.
func (s *QuizStore) CountUserAttemptsForQuiz(ctx context.Context, quizID, user string) (int, error) {
	if user == "" {
		return 0, nil
	}
	attempts, err := s.ListAttemptsForQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range attempts {
		if a.User == user {
			n++
		}
	}
	return n, nil
}

// AttemptLimit returns 0 (unlimited) when no limit is set.
func (s *QuizStore) AttemptLimit(ctx context.Context, quizID string) (int, error) {
	limits := map[string]int{}
	if err := s.read(ctx, KeyAttemptLimits, &limits); err != nil {
		return 0, err
	}
	return limits[quizID], nil
}

func (s *QuizStore) SetAttemptLimit(ctx context.Context, quizID string, limit int) error {
	if limit < 0 {
		limit = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	limits := map[string]int{}
	if err := s.read(ctx, KeyAttemptLimits, &limits); err != nil {
		return err
	}
	limits[quizID] = limit
	return s.write(ctx, KeyAttemptLimits, limits)
}

func (s *QuizStore) readString(ctx context.Context, key string) (string, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	return string(raw), err
}

func (s *QuizStore) CurrentUser(ctx context.Context) (string, error) {
	return s.readString(ctx, KeyCurrentUser)
}

func (s *QuizStore) SetCurrentUser(ctx context.Context, user string) error {
	if user == "" {
		return s.kv.Remove(ctx, KeyCurrentUser)
	}
	return s.kv.Set(ctx, KeyCurrentUser, []byte(user))
}

func (s *QuizStore) CurrentRole(ctx context.Context) (model.UserRole, error) {
	role, err := s.readString(ctx, KeyCurrentRole)
	return model.UserRole(role), err
}

func (s *QuizStore) SetCurrentRole(ctx context.Context, role model.UserRole) error {
	if role == "" {
		return s.kv.Remove(ctx, KeyCurrentRole)
	}
	if !role.Valid() {
		return util.NewValidationError("invalid role", util.FieldError{Field: "role", Error: "must be student, teacher or admin"})
	}
	return s.kv.Set(ctx, KeyCurrentRole, []byte(role))
}
