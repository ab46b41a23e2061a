package tag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/tag/dto"
	"newera.app/reentry/internal/modules/tag/repository"
	"newera.app/reentry/pkg/apperror"
)

type TagService interface {
	CreateTag(ctx context.Context, req dto.TagRequest) (*dto.TagResponse, error)
	RenameTag(ctx context.Context, id uint, req dto.TagRequest) (*dto.TagResponse, error)
	ListTags(ctx context.Context, search string) ([]dto.TagResponse, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) CreateTag(ctx context.Context, req dto.TagRequest) (*dto.TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required: %w", apperror.ErrInvalidInput)
	}

	if err := s.ensureUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	tag := &entity.Tag{Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return &dto.TagResponse{ID: tag.ID, Name: tag.Name}, nil
}

func (s *tagService) RenameTag(ctx context.Context, id uint, req dto.TagRequest) (*dto.TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required: %w", apperror.ErrInvalidInput)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.ensureUnique(ctx, name, id); err != nil {
		return nil, err
	}

	if err := s.repo.Rename(ctx, id, name); err != nil {
		return nil, err
	}

	return &dto.TagResponse{ID: id, Name: name}, nil
}

func (s *tagService) ListTags(ctx context.Context, search string) ([]dto.TagResponse, error) {
	tags, err := s.repo.FindAll(ctx, search)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (s *tagService) ensureUnique(ctx context.Context, name string, selfID uint) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperror.New(http.StatusConflict, fmt.Sprintf("tag %s already exists", name), apperror.ErrConflict)
	}
	return nil
}
