package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
)

type SubjectService struct {
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) GetAll(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.GetAll(ctx)
}

func (s *SubjectService) Create(ctx context.Context, req *model.SubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{Name: req.Name}
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info().Int("subject_id", sub.ID).Msg("Subject created")
	return sub, nil
}

func (s *SubjectService) Update(ctx context.Context, id int, req *model.SubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{ID: id, Name: req.Name}
	if err := s.subjectRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Delete(ctx context.Context, id int) error {
	return s.subjectRepo.Delete(ctx, id)
}
