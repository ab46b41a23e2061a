package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/pkg/apperror"
)

const maxNotesLength = 1000

// ComposeReferral validates and persists one referral for a case load client. Nothing is written
// unless the client is visible to requester and every resource id exists. Notifications are
// left to the caller.
func (s *referralService) ComposeReferral(ctx context.Context, requester *entity.User, caseUserID uint, resourceIDs []uint, notes string) (*entity.Referral, error) {
	if requester == nil {
		return nil, apperror.ErrUnauthorized
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, fmt.Errorf("notes are required: %w", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, fmt.Errorf("notes must be at most %d characters: %w", maxNotesLength, apperror.ErrInvalidInput)
	}

	ids := uniqueIDs(resourceIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("select at least one resource: %w", apperror.ErrInvalidInput)
	}

	client, err := s.caseLoadRepo.FindByID(ctx, caseUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", caseUserID, apperror.ErrNotFound)
		}
		return nil, err
	}

	if !canRefer(requester, client) {
		return nil, fmt.Errorf("client %d is not on your case load: %w", caseUserID, apperror.ErrForbidden)
	}

	resources, err := s.resourceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, resources); len(missing) > 0 {
		return nil, fmt.Errorf("resources %v: %w", missing, apperror.ErrNotFound)
	}

	requesterID := requester.ID
	referral := &entity.Referral{
		// Postgres keeps microseconds, so the key built from this value round-trips.
		ReferralDate: s.now().UTC().Truncate(time.Microsecond),
		Notes:        notes,
		UserID:       &requesterID,
		CaseUserID:   &client.ID,
	}

	if err := s.repo.CreateWithResources(ctx, referral, ids); err != nil {
		return nil, fmt.Errorf("failed to save referral: %w", err)
	}

	referral.User = requester
	referral.CaseUser = client
	referral.Resources = resources
	return referral, nil
}

// canRefer: admins may refer any client, staff only the clients they own.
func canRefer(requester *entity.User, client *entity.CaseLoadUser) bool {
	if requester.IsAdmin() {
		return true
	}
	return requester.IsActiveStaff() && client.OwnedBy(requester.ID)
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

func missingIDs(want []uint, found []entity.Resource) []uint {
	have := make(map[uint]struct{}, len(found))
	for _, r := range found {
		have[r.ID] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
