package repository

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

var errCourseNotFound = util.NewNotFound("course")

func (r *CourseRepository) List(ctx context.Context, activeOnly bool) ([]model.Course, error) {
	var courses []model.Course
	q := r.DB.WithContext(ctx).Order("created_at desc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&courses).Error
	return courses, translate(err, errCourseNotFound, "course repository: list")
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, errCourseNotFound, "course repository: find")
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error, errCourseNotFound, "course repository: create")
}

func (r *CourseRepository) Save(ctx context.Context, c *model.Course) error {
	return translate(r.DB.WithContext(ctx).Save(c).Error, errCourseNotFound, "course repository: save")
}

func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&model.Course{}, id)
	if res.Error != nil {
		return translate(res.Error, errCourseNotFound, "course repository: delete")
	}
	if res.RowsAffected == 0 {
		return errCourseNotFound
	}
	return nil
}
