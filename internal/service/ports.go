package service

import (
	"context"
	"quiz_portal_backend/internal/model"
)

// QuestionStore is the read side of the question repository. Both reads are
// scoped by test.
type QuestionStore interface {
	ListByTest(ctx context.Context, testID uint) ([]model.Question, error)
	ListByIDs(ctx context.Context, testID uint, ids []uint) ([]model.Question, error)
}

type AttemptStore interface {
	FindByID(ctx context.Context, id uint) (*model.TestAttempt, error)
	FindActive(ctx context.Context, testID, studentID uint) (*model.TestAttempt, error)
	FindLatest(ctx context.Context, testID, studentID uint) (*model.TestAttempt, error)
	CountGraded(ctx context.Context, testID, studentID uint) (int64, error)
	ListByTest(ctx context.Context, testID uint) ([]model.TestAttempt, error)
	Create(ctx context.Context, a *model.TestAttempt) error
	Finalize(ctx context.Context, attemptID uint, o model.AttemptOutcome) error
	// RecordViolation applies the counter delta for v and stores v atomically.
	RecordViolation(ctx context.Context, v *model.TestViolation) error
}

type TestStore interface {
	FindByID(ctx context.Context, id uint) (*model.Test, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint) error
}

// Requester is the already authenticated caller.
type Requester struct {
	UserID uint
	Role   model.UserRole
}
