package repository

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

type TestListRow struct {
	model.Test
	CourseTitle   string `json:"course_title,omitempty"`
	QuestionCount int    `json:"question_count"`
}

type TestFilter struct {
	CourseID   *uint
	ActiveOnly bool
}

func (r *TestRepository) List(ctx context.Context, f TestFilter) ([]TestListRow, error) {
	q := r.DB.WithContext(ctx).Table("tests t").
		Select("t.*, c.title AS course_title, " +
			"(SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id AND q.deleted_at IS NULL) AS question_count").
		Joins("LEFT JOIN courses c ON c.id = t.course_id").
		Where("t.deleted_at IS NULL")

	if f.ActiveOnly {
		q = q.Where("t.is_active = ?", true)
	}
	if f.CourseID != nil {
		q = q.Where("t.course_id = ?", *f.CourseID)
	}

	var rows []TestListRow
	err := q.Order("t.created_at DESC").Scan(&rows).Error
	return rows, translate(err, util.ErrTestNotFound, "test repository: list")
}

func (r *TestRepository) FindByID(ctx context.Context, id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, util.ErrTestNotFound, "test repository: find")
	}
	return &t, nil
}

func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error, util.ErrTestNotFound, "test repository: create")
}

func (r *TestRepository) Save(ctx context.Context, t *model.Test) error {
	return translate(r.DB.WithContext(ctx).Save(t).Error, util.ErrTestNotFound, "test repository: save")
}

// Delete removes the test together with its questions.
func (r *TestRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return translate(err, util.ErrTestNotFound, "test repository: delete questions")
		}
		res := tx.Delete(&model.Test{}, id)
		if res.Error != nil {
			return translate(res.Error, util.ErrTestNotFound, "test repository: delete")
		}
		if res.RowsAffected == 0 {
			return util.ErrTestNotFound
		}
		return nil
	})
}
