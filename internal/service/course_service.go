package service

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"
	"strings"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	IsActive    *bool  `json:"is_active"`
}

func (s *CourseService) List(ctx context.Context, who Requester) ([]model.Course, error) {
	return s.CourseRepo.List(ctx, !who.Role.IsStaff())
}

func (s *CourseService) Get(ctx context.Context, id uint) (*model.Course, error) {
	return s.CourseRepo.FindByID(ctx, id)
}

func (s *CourseService) Create(ctx context.Context, in CourseInput, teacherID uint) (*model.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, util.Required("title")
	}
	c := &model.Course{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		TeacherID:   &teacherID,
		IsActive:    true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.CourseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	c, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		c.Title = in.Title
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Code != "" {
		c.Code = in.Code
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.CourseRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, id uint) error {
	return s.CourseRepo.Delete(ctx, id)
}
