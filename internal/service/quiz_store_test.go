package service

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/kvstore"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizStoreQuizzes(t *testing.T) {
	store := NewQuizStore(kvstore.NewMemory())
	ctx := context.Background()

	empty, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	saved, err := store.SaveQuiz(ctx, model.Quiz{Title: "first"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotZero(t, saved.CreatedAt)

	saved.Title = "renamed"
	updated, err := store.SaveQuiz(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)

	all, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "renamed", all[0].Title)

	got, err := store.GetQuiz(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, store.RemoveQuiz(ctx, saved.ID))
	_, err = store.GetQuiz(ctx, saved.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestQuizStoreAttempts(t *testing.T) {
	store := NewQuizStore(kvstore.NewMemory())
	ctx := context.Background()
	require.NoError(t, store.SetCurrentUser(ctx, "ada"))

	a, err := store.SaveAttempt(ctx, model.QuizAttempt{QuizID: "q1"})
	require.NoError(t, err)
	assert.Equal(t, "ada", a.User)

	_, err = store.SaveAttempt(ctx, model.QuizAttempt{QuizID: "q1", User: "grace"})
	require.NoError(t, err)
	_, err = store.SaveAttempt(ctx, model.QuizAttempt{QuizID: "q2"})
	require.NoError(t, err)

	forQ1, err := store.ListAttemptsForQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Len(t, forQ1, 2)

	n, err := store.CountUserAttemptsForQuiz(ctx, "q1", "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.CountUserAttemptsForQuiz(ctx, "q1", "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuizStoreLimitsAndSession(t *testing.T) {
	store := NewQuizStore(kvstore.NewMemory())
	ctx := context.Background()

	limit, err := store.AttemptLimit(ctx, "q1")
	require.NoError(t, err)
	assert.Zero(t, limit)

	require.NoError(t, store.SetAttemptLimit(ctx, "q1", 3))
	require.NoError(t, store.SetAttemptLimit(ctx, "q2", -5))
	limit, err = store.AttemptLimit(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, 3, limit)
	limit, err = store.AttemptLimit(ctx, "q2")
	require.NoError(t, err)
	assert.Zero(t, limit)

	require.NoError(t, store.SetCurrentRole(ctx, model.Teacher))
	role, err := store.CurrentRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, role)
	assert.ErrorIs(t, store.SetCurrentRole(ctx, "root"), util.ErrValidation)

	require.NoError(t, store.SetCurrentUser(ctx, "ada"))
	require.NoError(t, store.SetCurrentUser(ctx, ""))
	user, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, user)
}

func TestQuizStoreToleratesCorruptDocuments(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyQuizzes, []byte("{not json")))

	store := NewQuizStore(kv)
	quizzes, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Empty(t, quizzes)

	_, err = store.SaveQuiz(ctx, model.Quiz{Title: "fresh"})
	require.NoError(t, err)
	quizzes, err = store.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, quizzes, 1)
}

func TestQuizStoreSaveAttemptWithinLimit(t *testing.T) {
	store := NewQuizStore(kvstore.NewMemory())
	ctx := context.Background()

	_, err := store.SaveAttemptWithin(ctx, model.QuizAttempt{QuizID: "q1", User: "ada"}, 1)
	require.NoError(t, err)
	_, err = store.SaveAttemptWithin(ctx, model.QuizAttempt{QuizID: "q1", User: "ada"}, 1)
	assert.ErrorIs(t, err, util.ErrAttemptLimit)

	// limit is per quiz and per user
	_, err = store.SaveAttemptWithin(ctx, model.QuizAttempt{QuizID: "q2", User: "ada"}, 1)
	assert.NoError(t, err)
	_, err = store.SaveAttemptWithin(ctx, model.QuizAttempt{QuizID: "q1", User: "grace"}, 1)
	assert.NoError(t, err)
}

func TestQuizStoreSaveAttemptWithinConcurrent(t *testing.T) {
	store := NewQuizStore(kvstore.NewMemory())
	ctx := context.Background()
	const limit = 3

	var wg sync.WaitGroup
	var mu sync.Mutex
	saved, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.SaveAttemptWithin(ctx, model.QuizAttempt{QuizID: "q1", User: "ada"}, limit)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				saved++
			} else if assert.ErrorIs(t, err, util.ErrAttemptLimit) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, saved)
	assert.Equal(t, 20-limit, rejected)
	n, err := store.CountUserAttemptsForQuiz(ctx, "q1", "ada")
	require.NoError(t, err)
	assert.Equal(t, limit, n)
}
