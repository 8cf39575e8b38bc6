package service

import (
	"context"

	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
)

// ClassService handles class business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

// List retrieves all classes.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	return s.classRepo.GetAll(ctx)
}

// Create creates a new class.
func (s *ClassService) Create(ctx context.Context, req *model.CreateClassRequest) (*model.Class, error) {
	class := &model.Class{Name: req.Name, Section: req.Section, GradeLevel: req.GradeLevel}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id int, req *model.CreateClassRequest) (*model.Class, error) {
	class := &model.Class{ID: id, Name: req.Name, Section: req.Section, GradeLevel: req.GradeLevel}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Delete removes a class. Classes still holding assignments are kept and
// repository.ErrForeignKey is returned.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	return s.classRepo.Delete(ctx, id)
}
