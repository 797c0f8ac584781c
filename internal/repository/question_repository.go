package repository

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionRepository is the question store. Every read is scoped by test_id.
type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) ordered(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Order("order_number ASC").Order("id ASC")
}

func (r *QuestionRepository) ListByTest(ctx context.Context, testID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.ordered(ctx).Where("test_id = ?", testID).Find(&qs).Error
	return qs, translate(err, util.ErrQuestionNotFound, "question repository: list by test")
}

func (r *QuestionRepository) ListByIDs(ctx context.Context, testID uint, ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return []model.Question{}, nil
	}
	var qs []model.Question
	err := r.ordered(ctx).Where("test_id = ? AND id IN ?", testID, ids).Find(&qs).Error
	return qs, translate(err, util.ErrQuestionNotFound, "question repository: list by ids")
}

func (r *QuestionRepository) CountByTest(ctx context.Context, testID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).Where("test_id = ?", testID).Count(&n).Error
	return n, translate(err, util.ErrQuestionNotFound, "question repository: count")
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, translate(err, util.ErrQuestionNotFound, "question repository: find")
	}
	return &q, nil
}

// NextOrderNumber returns MAX(order_number)+1 for the test, 1 when empty.
func (r *QuestionRepository) NextOrderNumber(ctx context.Context, testID uint) (int, error) {
	var next int
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Select("COALESCE(MAX(order_number), 0) + 1").
		Where("test_id = ?", testID).
		Scan(&next).Error
	return next, translate(err, util.ErrQuestionNotFound, "question repository: next order")
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return translate(r.DB.WithContext(ctx).Create(q).Error, util.ErrQuestionNotFound, "question repository: create")
}

func (r *QuestionRepository) Save(ctx context.Context, q *model.Question) error {
	return translate(r.DB.WithContext(ctx).Save(q).Error, util.ErrQuestionNotFound, "question repository: save")
}

func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&model.Question{}, id)
	if res.Error != nil {
		return translate(res.Error, util.ErrQuestionNotFound, "question repository: delete")
	}
	if res.RowsAffected == 0 {
		return util.ErrQuestionNotFound
	}
	return nil
}
