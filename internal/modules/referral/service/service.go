package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	caseloadRepo "newera.app/reentry/internal/modules/caseload/repository"
	"newera.app/reentry/internal/modules/notifier"
	"newera.app/reentry/internal/modules/referral/dto"
	"newera.app/reentry/internal/modules/referral/repository"
	resourceRepo "newera.app/reentry/internal/modules/resource/repository"
	"newera.app/reentry/pkg/apperror"
	commonDto "newera.app/reentry/pkg/dto"
)

const defaultPageSize = 20

// AccessNotifier is told when a client opens a referral link for the first time.
type AccessNotifier interface {
	NotifyReferralAccessed(ctx context.Context, referral *entity.Referral, resource *entity.Resource) error
}

type ReferralService interface {
	ComposeReferral(ctx context.Context, requester *entity.User, caseUserID uint, resourceIDs []uint, notes string) (*entity.Referral, error)
	ListReferrals(ctx context.Context, requester *entity.User, filter dto.ReferralFilter) ([]dto.ReferralResponse, commonDto.PaginationMeta, error)
	GetReferral(ctx context.Context, requester *entity.User, id uint) (*dto.ReferralResponse, error)
	MarkAccessed(ctx context.Context, resourceID uint, key string) (bool, error)
	ExportReferrals(ctx context.Context, requester *entity.User) ([]byte, error)
}

type referralService struct {
	repo         repository.ReferralRepository
	caseLoadRepo caseloadRepo.CaseLoadRepository
	resourceRepo resourceRepo.ResourceRepository
	notifier     AccessNotifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewReferralService(
	repo repository.ReferralRepository,
	caseLoads caseloadRepo.CaseLoadRepository,
	resources resourceRepo.ResourceRepository,
	accessNotifier AccessNotifier,
	logger *zap.Logger,
) ReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &referralService{
		repo:         repo,
		caseLoadRepo: caseLoads,
		resourceRepo: resources,
		notifier:     accessNotifier,
		logger:       logger,
		now:          time.Now,
	}
}

// referrerScope reports whether requester sees every referral (admins) or only their own (staff).
func referrerScope(requester *entity.User) (bool, error) {
	switch {
	case requester == nil:
		return false, apperror.ErrUnauthorized
	case requester.IsAdmin():
		return true, nil
	case requester.IsActiveStaff():
		return false, nil
	default:
		return false, fmt.Errorf("referrals require staff access: %w", apperror.ErrForbidden)
	}
}

func (s *referralService) ListReferrals(ctx context.Context, requester *entity.User, filter dto.ReferralFilter) ([]dto.ReferralResponse, commonDto.PaginationMeta, error) {
	isAdmin, err := referrerScope(requester)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	query := repository.ListFilter{Limit: limit, Offset: (page - 1) * limit}
	if !isAdmin {
		id := requester.ID
		query.UserID = &id
	}

	referrals, total, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	out := make([]dto.ReferralResponse, 0, len(referrals))
	for _, r := range referrals {
		out = append(out, ToResponse(r))
	}
	return out, commonDto.NewPaginationMeta(page, limit, total), nil
}

func (s *referralService) GetReferral(ctx context.Context, requester *entity.User, id uint) (*dto.ReferralResponse, error) {
	isAdmin, err := referrerScope(requester)
	if err != nil {
		return nil, err
	}

	referral, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("referral %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}

	if !isAdmin && (referral.UserID == nil || *referral.UserID != requester.ID) {
		return nil, fmt.Errorf("referral %d: %w", id, apperror.ErrNotFound)
	}

	res := ToResponse(referral)
	return &res, nil
}

// MarkAccessed records that the client opened resourceID through the link carrying key.
// It reports true only for the call that moved the referral from unaccessed to accessed.
func (s *referralService) MarkAccessed(ctx context.Context, resourceID uint, key string) (bool, error) {
	createdAt, err := ParseAccessKey(key)
	if err != nil {
		return false, err
	}

	referral, err := s.repo.FindForAccess(ctx, resourceID, createdAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("no referral for resource %d with key %q: %w", resourceID, key, apperror.ErrNotFound)
		}
		return false, err
	}

	if referral.Accessed() {
		return false, nil
	}

	now := s.now().UTC()
	first, err := s.repo.MarkAccessed(ctx, referral.ID, now)
	if err != nil || !first {
		return false, err
	}
	referral.DateAccessed = &now

	if s.notifier != nil {
		var resource *entity.Resource
		if len(referral.Resources) > 0 {
			resource = &referral.Resources[0]
		}
		if err := s.notifier.NotifyReferralAccessed(ctx, referral, resource); err != nil {
			s.logger.Warn("failed to notify staff of referral access",
				zap.Uint("referral_id", referral.ID),
				zap.Error(err),
			)
		}
	}

	return true, nil
}

// ToResponse flattens a referral with its preloaded relations.
func ToResponse(r *entity.Referral) dto.ReferralResponse {
	res := dto.ReferralResponse{
		ID:           r.ID,
		ReferralDate: r.ReferralDate,
		DateAccessed: r.DateAccessed,
		Notes:        r.Notes,
		CaseUserID:   r.CaseUserID,
		Email:        notifier.ResolveEmailRecipient(r),
		Phone:        notifier.ResolveSMSRecipient(r),
		Resources:    make([]dto.ResourceSummary, 0, len(r.Resources)),
	}
	if r.UserID != nil {
		id := r.UserID.String()
		res.StaffID = &id
	}
	if r.User != nil {
		res.StaffName = r.User.FullName()
	}
	if r.CaseUser != nil {
		res.ClientName = r.CaseUser.FullName()
	}
	for _, resource := range r.Resources {
		res.Resources = append(res.Resources, dto.ResourceSummary{ID: resource.ID, Name: resource.Name})
	}
	return res
}
