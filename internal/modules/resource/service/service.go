package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/resource/dto"
	"newera.app/reentry/internal/modules/resource/repository"
	search "newera.app/reentry/internal/modules/search/service"
	tagRepo "newera.app/reentry/internal/modules/tag/repository"
	"newera.app/reentry/pkg/apperror"
	commonDto "newera.app/reentry/pkg/dto"
	"newera.app/reentry/pkg/storage"
)

const (
	defaultPageSize    = 20
	defaultState       = "PA"
	defaultCity        = "Pittsburgh"
	defaultImageFolder = "resources"
)

type ResourceService interface {
	CreateResource(ctx context.Context, req dto.CreateResourceRequest, image *commonDto.ImageFile) (*dto.ResourceResponse, error)
	UpdateResource(ctx context.Context, id uint, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error)
	UploadImage(ctx context.Context, id uint, image commonDto.ImageFile) (*dto.ResourceResponse, error)
	GetResource(ctx context.Context, id uint) (*dto.ResourceResponse, error)
	ListResources(ctx context.Context, filter dto.ResourceFilter) ([]dto.ResourceResponse, commonDto.PaginationMeta, error)
	SearchResources(ctx context.Context, query string, limit int) ([]dto.ResourceResponse, error)
	GetImageURL(ctx context.Context, id uint) (string, error)
	ReindexResources(ctx context.Context) (int, error)
}

type Options struct {
	// Search and Storage are optional.
	Search      search.SearchService
	Storage     storage.ImageStorage
	Clicks      ClickCounter
	ImageFolder string
	Logger      *zap.Logger
}

type resourceService struct {
	repo        repository.ResourceRepository
	tagRepo     tagRepo.TagRepository
	search      search.SearchService
	storage     storage.ImageStorage
	clicks      ClickCounter
	imageFolder string
	logger      *zap.Logger
}

func NewResourceService(repo repository.ResourceRepository, tags tagRepo.TagRepository, opts Options) ResourceService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ImageFolder == "" {
		opts.ImageFolder = defaultImageFolder
	}
	return &resourceService{
		repo:        repo,
		tagRepo:     tags,
		search:      opts.Search,
		storage:     opts.Storage,
		clicks:      opts.Clicks,
		imageFolder: opts.ImageFolder,
		logger:      opts.Logger,
	}
}

func (s *resourceService) CreateResource(ctx context.Context, req dto.CreateResourceRequest, image *commonDto.ImageFile) (*dto.ResourceResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("resource name is required: %w", apperror.ErrInvalidInput)
	}

	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}

	resource := &entity.Resource{
		Name:            name,
		Description:     req.Description,
		Hours:           req.Hours,
		Email:           strings.TrimSpace(req.Email),
		Phone:           req.Phone,
		Street:          req.Street,
		StreetSecondary: req.StreetSecondary,
		City:            orDefault(req.City, defaultCity),
		ZipCode:         req.ZipCode,
		State:           orDefault(req.State, defaultState),
		URL:             req.URL,
		IsActive:        true,
		ContactName:     req.ContactName,
		ContactPosition: req.ContactPosition,
		FaxNumber:       req.FaxNumber,
		ContactEmail:    strings.TrimSpace(req.ContactEmail),
		Tags:            tags,
	}

	if image != nil {
		if err := s.storeImage(ctx, resource, *image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.index(resource)
	res := toResponse(resource)
	return &res, nil
}

func (s *resourceService) UpdateResource(ctx context.Context, id uint, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	resource, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("resource name is required: %w", apperror.ErrInvalidInput)
		}
		resource.Name = name
	}
	setString(&resource.Description, req.Description)
	setString(&resource.Hours, req.Hours)
	setString(&resource.Email, req.Email)
	setString(&resource.Phone, req.Phone)
	setString(&resource.Street, req.Street)
	setString(&resource.StreetSecondary, req.StreetSecondary)
	setString(&resource.City, req.City)
	setString(&resource.ZipCode, req.ZipCode)
	setString(&resource.State, req.State)
	setString(&resource.URL, req.URL)
	setString(&resource.ContactName, req.ContactName)
	setString(&resource.ContactPosition, req.ContactPosition)
	setString(&resource.FaxNumber, req.FaxNumber)
	setString(&resource.ContactEmail, req.ContactEmail)
	if req.IsActive != nil {
		resource.IsActive = *req.IsActive
	}

	var tags *[]entity.Tag
	if req.TagIDs != nil {
		resolved, err := s.resolveTags(ctx, *req.TagIDs)
		if err != nil {
			return nil, err
		}
		tags = &resolved
	}

	if err := s.repo.Update(ctx, resource, tags); err != nil {
		return nil, err
	}

	s.index(resource)
	res := toResponse(resource)
	return &res, nil
}

func (s *resourceService) UploadImage(ctx context.Context, id uint, image commonDto.ImageFile) (*dto.ResourceResponse, error) {
	resource, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := resource.ImageURL
	if err := s.storeImage(ctx, resource, image); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, resource, nil); err != nil {
		return nil, err
	}

	if previous != nil && *previous != "" {
		if err := s.storage.DeleteImage(ctx, *previous); err != nil {
			s.logger.Warn("failed to delete replaced resource image", zap.Uint("resource_id", id), zap.Error(err))
		}
	}

	res := toResponse(resource)
	return &res, nil
}

// GetResource returns an active resource and counts the view.
func (s *resourceService) GetResource(ctx context.Context, id uint) (*dto.ResourceResponse, error) {
	resource, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !resource.IsActive {
		return nil, fmt.Errorf("resource %d: %w", id, apperror.ErrNotFound)
	}

	if s.clicks != nil {
		if err := s.clicks.RecordClick(ctx, id); err != nil {
			s.logger.Warn("failed to record resource click", zap.Uint("resource_id", id), zap.Error(err))
		}
	}

	res := toResponse(resource)
	return &res, nil
}

func (s *resourceService) ListResources(ctx context.Context, filter dto.ResourceFilter) ([]dto.ResourceResponse, commonDto.PaginationMeta, error) {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	resources, total, err := s.repo.FindAll(ctx, repository.ListFilter{
		TagID:  filter.TagID,
		Search: strings.TrimSpace(filter.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	out := make([]dto.ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, toResponse(r))
	}
	return out, commonDto.NewPaginationMeta(page, limit, total), nil
}

// SearchResources queries the search index and falls back to a name search when it is not configured.
func (s *resourceService) SearchResources(ctx context.Context, query string, limit int) ([]dto.ResourceResponse, error) {
	query = strings.TrimSpace(query)
	if limit < 1 {
		limit = defaultPageSize
	}

	if s.search == nil {
		resources, _, err := s.repo.FindAll(ctx, repository.ListFilter{Search: query, Limit: limit})
		if err != nil {
			return nil, err
		}
		out := make([]dto.ResourceResponse, 0, len(resources))
		for _, r := range resources {
			out = append(out, toResponse(r))
		}
		return out, nil
	}

	ids, err := s.search.SearchResources(query, int64(limit))
	if err != nil {
		return nil, err
	}

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.Resource, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	out := make([]dto.ResourceResponse, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok && r.IsActive {
			out = append(out, toResponse(r))
		}
	}
	return out, nil
}

func (s *resourceService) GetImageURL(ctx context.Context, id uint) (string, error) {
	resource, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if resource.ImageURL == nil || *resource.ImageURL == "" {
		return "", fmt.Errorf("resource %d has no image: %w", id, apperror.ErrNotFound)
	}
	return *resource.ImageURL, nil
}

// ReindexResources pushes every resource, active or not, to the search index.
func (s *resourceService) ReindexResources(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}

	resources, _, err := s.repo.FindAll(ctx, repository.ListFilter{IncludeInactive: true})
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.search.IndexResource(r); err != nil {
			return indexed, fmt.Errorf("index resource %d: %w", r.ID, err)
		}
		indexed++
	}
	return indexed, nil
}

func (s *resourceService) find(ctx context.Context, id uint) (*entity.Resource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return resource, nil
}

func (s *resourceService) resolveTags(ctx context.Context, ids []uint) ([]entity.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []entity.Tag{}, nil
	}

	tags, err := s.tagRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("one or more tags do not exist: %w", apperror.ErrNotFound)
	}
	return tags, nil
}

func (s *resourceService) storeImage(ctx context.Context, resource *entity.Resource, image commonDto.ImageFile) error {
	if s.storage == nil {
		return fmt.Errorf("image storage is not configured: %w", apperror.ErrBadRequest)
	}

	url, err := s.storage.UploadImage(ctx, image.Reader, s.imageFolder, image.FileName)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}

	resource.ImageURL = &url
	resource.ContentType = storage.ContentTypeFor(image.FileName)
	return nil
}

// index pushes the resource to the search index; failures only get logged.
func (s *resourceService) index(resource *entity.Resource) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexResource(resource); err != nil {
		s.logger.Warn("failed to index resource", zap.Uint("resource_id", resource.ID), zap.Error(err))
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func toResponse(r *entity.Resource) dto.ResourceResponse {
	tags := make([]dto.TagSummary, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, dto.TagSummary{ID: t.ID, Name: t.Name})
	}

	return dto.ResourceResponse{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Hours:           r.Hours,
		Email:           r.Email,
		Phone:           r.Phone,
		Street:          r.Street,
		StreetSecondary: r.StreetSecondary,
		City:            r.City,
		ZipCode:         r.ZipCode,
		State:           r.State,
		URL:             r.URL,
		HasImage:        r.ImageURL != nil && *r.ImageURL != "",
		Clicks:          r.Clicks,
		IsActive:        r.IsActive,
		ContactName:     r.ContactName,
		ContactPosition: r.ContactPosition,
		FaxNumber:       r.FaxNumber,
		ContactEmail:    r.ContactEmail,
		Tags:            tags,
		UpdatedAt:       r.UpdatedAt,
	}
}
