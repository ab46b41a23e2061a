package caseload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/caseload/dto"
	"newera.app/reentry/internal/modules/caseload/repository"
	userRepo "newera.app/reentry/internal/modules/user/repository"
	"newera.app/reentry/pkg/apperror"
)

type CaseLoadService interface {
	ListCaseLoad(ctx context.Context, requester *entity.User) ([]dto.ClientResponse, error)
	AddClient(ctx context.Context, requester *entity.User, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	UpdateClient(ctx context.Context, requester *entity.User, id uint, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	RemoveClient(ctx context.Context, requester *entity.User, id uint) error
	ListRecipients(ctx context.Context, requester *entity.User) ([]dto.RecipientOption, error)
}

type caseLoadService struct {
	repo     repository.CaseLoadRepository
	userRepo userRepo.UserRepository
}

func NewCaseLoadService(repo repository.CaseLoadRepository, userRepo userRepo.UserRepository) CaseLoadService {
	return &caseLoadService{repo: repo, userRepo: userRepo}
}

// visibleOwner is nil for administrators (whole directory) and the caller's id for staff.
func visibleOwner(requester *entity.User) (*uuid.UUID, error) {
	switch {
	case requester.IsAdmin():
		return nil, nil
	case requester.IsActiveStaff():
		id := requester.ID
		return &id, nil
	default:
		return nil, fmt.Errorf("case load requires staff access: %w", apperror.ErrForbidden)
	}
}

func (s *caseLoadService) ListCaseLoad(ctx context.Context, requester *entity.User) ([]dto.ClientResponse, error) {
	owner, err := visibleOwner(requester)
	if err != nil {
		return nil, err
	}

	clients, err := s.repo.FindAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toResponse(c))
	}
	return out, nil
}

func (s *caseLoadService) AddClient(ctx context.Context, requester *entity.User, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if _, err := visibleOwner(requester); err != nil {
		return nil, err
	}

	owner := requester
	if req.StaffID != "" && req.StaffID != requester.ID.String() {
		if !requester.IsAdmin() {
			return nil, fmt.Errorf("only administrators can assign clients to other staff: %w", apperror.ErrForbidden)
		}
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			return nil, fmt.Errorf("invalid staff id: %w", apperror.ErrBadRequest)
		}
		owner, err = s.userRepo.FindByID(ctx, staffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("staff member %s: %w", req.StaffID, apperror.ErrNotFound)
			}
			return nil, err
		}
	}

	ownerID := owner.ID
	client := &entity.CaseLoadUser{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     optionalPhone(req.Phone),
		Notes:     req.Notes,
		IsActive:  true,
		UserID:    &ownerID,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	client.User = owner

	res := toResponse(client)
	return &res, nil
}

func (s *caseLoadService) UpdateClient(ctx context.Context, requester *entity.User, id uint, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.findVisible(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		client.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		client.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		client.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = optionalPhone(*req.Phone)
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	res := toResponse(client)
	return &res, nil
}

func (s *caseLoadService) RemoveClient(ctx context.Context, requester *entity.User, id uint) error {
	if _, err := s.findVisible(ctx, requester, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListRecipients lists the clients a referral can be sent to, with the channels each one can receive.
func (s *caseLoadService) ListRecipients(ctx context.Context, requester *entity.User) ([]dto.RecipientOption, error) {
	owner, err := visibleOwner(requester)
	if err != nil {
		return nil, err
	}

	clients, err := s.repo.FindAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RecipientOption, 0, len(clients))
	for _, c := range clients {
		if !c.IsActive {
			continue
		}
		out = append(out, dto.RecipientOption{
			ID:       c.ID,
			Name:     c.FullName(),
			HasEmail: strings.TrimSpace(c.Email) != "",
			HasPhone: strings.TrimSpace(c.PhoneNumber()) != "",
		})
	}
	return out, nil
}

func (s *caseLoadService) findVisible(ctx context.Context, requester *entity.User, id uint) (*entity.CaseLoadUser, error) {
	owner, err := visibleOwner(requester)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}

	if owner != nil && !client.OwnedBy(*owner) {
		return nil, fmt.Errorf("client %d is not on your case load: %w", id, apperror.ErrForbidden)
	}
	return client, nil
}

func optionalPhone(phone string) *string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	return &phone
}

func toResponse(c *entity.CaseLoadUser) dto.ClientResponse {
	res := dto.ClientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Notes:     c.Notes,
		IsActive:  c.IsActive,
	}
	if c.UserID != nil {
		id := c.UserID.String()
		res.StaffID = &id
	}
	if c.User != nil {
		res.StaffName = c.User.FullName()
	}
	return res
}
