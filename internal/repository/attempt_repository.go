package repository

import (
	"context"
	"errors"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"

	"gorm.io/gorm"
)

// AttemptRepository is the attempt store. Every mutation is a single
// statement so no lock is held across a client round trip.
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindByID(ctx context.Context, id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, util.ErrAttemptNotFound, "attempt repository: find")
	}
	return &a, nil
}

func (r *AttemptRepository) FindActive(ctx context.Context, testID, studentID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.WithContext(ctx).
		Where("test_id = ? AND student_id = ? AND status = ?", testID, studentID, model.AttemptInProgress).
		Order("started_at DESC").
		First(&a).Error
	if err != nil {
		return nil, translate(err, util.ErrAttemptNotFound, "attempt repository: find active")
	}
	return &a, nil
}

func (r *AttemptRepository) FindLatest(ctx context.Context, testID, studentID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		Order("started_at DESC").Order("id DESC").
		First(&a).Error
	if err != nil {
		return nil, translate(err, util.ErrAttemptNotFound, "attempt repository: find latest")
	}
	return &a, nil
}

func (r *AttemptRepository) CountGraded(ctx context.Context, testID, studentID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("test_id = ? AND student_id = ? AND status = ?", testID, studentID, model.AttemptGraded).
		Count(&n).Error
	return n, translate(err, util.ErrAttemptNotFound, "attempt repository: count graded")
}

func (r *AttemptRepository) ListByTest(ctx context.Context, testID uint) ([]model.TestAttempt, error) {
	var as []model.TestAttempt
	err := r.DB.WithContext(ctx).Where("test_id = ?", testID).Order("started_at DESC").Find(&as).Error
	return as, translate(err, util.ErrAttemptNotFound, "attempt repository: list")
}

// Create inserts the attempt. A second in-progress attempt for the same
// (test, student) violates the active_key unique index and comes back as
// util.ErrConflict.
func (r *AttemptRepository) Create(ctx context.Context, a *model.TestAttempt) error {
	err := r.DB.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrConflict
	}
	return translate(err, util.ErrAttemptNotFound, "attempt repository: create")
}

func applyViolationDelta(ctx context.Context, db *gorm.DB, attemptID uint, d model.ViolationDelta) error {
	res := db.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"window_switches":     gorm.Expr("window_switches + ?", d.WindowSwitches),
			"screenshot_attempts": gorm.Expr("screenshot_attempts + ?", d.ScreenshotAttempts),
			"phone_calls":         gorm.Expr("phone_calls + ?", d.PhoneCalls),
			"total_violations":    gorm.Expr("total_violations + ?", d.Total()),
		})
	if res.Error != nil {
		return translate(res.Error, util.ErrAttemptNotFound, "attempt repository: violation delta")
	}
	if res.RowsAffected == 0 {
		return explainNoRows(ctx, db, attemptID)
	}
	return nil
}

// RecordViolation bumps the attempt's counters and appends the log row in
// one transaction, so the two never disagree.
func (r *AttemptRepository) RecordViolation(ctx context.Context, v *model.TestViolation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyViolationDelta(ctx, tx, v.AttemptID, model.DeltaFor(v.ViolationType)); err != nil {
			return err
		}
		return translate(tx.Create(v).Error, util.ErrAttemptNotFound, "attempt repository: log violation")
	})
}

// Finalize grades the attempt exactly once: the UPDATE only matches rows that
// are not graded yet.
func (r *AttemptRepository) Finalize(ctx context.Context, attemptID uint, o model.AttemptOutcome) error {
	res := r.DB.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("id = ? AND status <> ?", attemptID, model.AttemptGraded).
		Updates(map[string]interface{}{
			"status":        model.AttemptGraded,
			"submitted_at":  o.SubmittedAt,
			"correct_count": o.Grade.Correct,
			"total_count":   o.Grade.Total,
			"score":         o.Grade.Score,
			"max_score":     o.Grade.MaxScore,
			"percentage":    o.Percentage,
			"passed":        o.Passed,
			"answers":       o.Answers,
			"result":        o.Result,
			"active_key":    nil,
		})
	if res.Error != nil {
		return translate(res.Error, util.ErrAttemptNotFound, "attempt repository: finalize")
	}
	if res.RowsAffected == 0 {
		return explainNoRows(ctx, r.DB, attemptID)
	}
	return nil
}

func explainNoRows(ctx context.Context, db *gorm.DB, attemptID uint) error {
	var a model.TestAttempt
	if err := db.WithContext(ctx).First(&a, attemptID).Error; err != nil {
		return translate(err, util.ErrAttemptNotFound, "attempt repository: find")
	}
	if a.Status.Terminal() {
		return util.ErrAlreadyGraded
	}
	return util.ErrConflict
}
