package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"github.com/untangle-ph/untangle-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure MemberServiceImpl implements MemberService
var _ MemberService = (*MemberServiceImpl)(nil)

// MemberServiceImpl handles member registration and profile management.
type MemberServiceImpl struct {
	memberRepo   repositories.MemberRepository
	purchaseRepo repositories.PurchaseRepository
	sessionRepo  repositories.SessionRepository
	locks        *MemberLocks
	now          func() time.Time
}

// NewMemberService creates a new MemberServiceImpl
func NewMemberService(memberRepo repositories.MemberRepository, purchaseRepo repositories.PurchaseRepository, sessionRepo repositories.SessionRepository, locks *MemberLocks) *MemberServiceImpl {
	return &MemberServiceImpl{
		memberRepo:   memberRepo,
		purchaseRepo: purchaseRepo,
		sessionRepo:  sessionRepo,
		locks:        locks,
		now:          time.Now,
	}
}

// CreateMember registers a member keyed by their normalized mobile number.
func (s *MemberServiceImpl) CreateMember(ctx context.Context, in CreateMemberInput) (*models.Member, error) {
	mobile, err := utils.NormalizeMobile(in.Mobile)
	if err != nil {
		return nil, err
	}
	if in.FullName == "" {
		return nil, apperrors.InvalidArgument("full name is required")
	}

	_, err = s.memberRepo.FindByMobile(ctx, mobile)
	if err == nil {
		return nil, apperrors.Conflict("mobile number %s already registered", mobile)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	member := &models.Member{
		Mobile:           mobile,
		FullName:         in.FullName,
		Email:            in.Email,
		BranchID:         in.BranchID,
		Notes:            in.Notes,
		RegistrationDate: utils.DateOf(s.now()),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	slog.Info("Member registered", "mobile", mobile, "memberId", member.ID)
	return member, nil
}

// GetMemberByID retrieves a member by ID
func (s *MemberServiceImpl) GetMemberByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", id.Hex())
		}
		return nil, err
	}
	return member, nil
}

// GetMemberByMobile retrieves a member by raw mobile number, normalizing first
func (s *MemberServiceImpl) GetMemberByMobile(ctx context.Context, mobile string) (*models.Member, error) {
	normalized, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.FindByMobile(ctx, normalized)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", normalized)
		}
		return nil, err
	}
	return member, nil
}

// ListMembers retrieves members with search and pagination
func (s *MemberServiceImpl) ListMembers(ctx context.Context, search string, page, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.FindAll(ctx, search, page, limit)
}

// UpdateMember updates a member's profile fields. Hour totals and the expiry
// date are not updatable here; only the ledger operations move them.
func (s *MemberServiceImpl) UpdateMember(ctx context.Context, id primitive.ObjectID, in UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Mobile != nil {
		mobile, err := utils.NormalizeMobile(*in.Mobile)
		if err != nil {
			return nil, err
		}
		existing, err := s.memberRepo.FindByMobile(ctx, mobile)
		if err == nil && existing.ID != member.ID {
			return nil, apperrors.Conflict("mobile number %s already in use", mobile)
		}
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to check existing member: %w", err)
		}
		member.Mobile = mobile
	}
	if in.FullName != nil {
		member.FullName = *in.FullName
	}
	if in.Email != nil {
		member.Email = *in.Email
	}
	if in.BranchID != nil {
		member.BranchID = *in.BranchID
	}
	if in.Notes != nil {
		member.Notes = *in.Notes
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// PurgeMember deletes a member along with every purchase and session they
// own. This loses audit history and is only reachable through an explicit,
// admin-gated endpoint.
func (s *MemberServiceImpl) PurgeMember(ctx context.Context, id primitive.ObjectID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.purchaseRepo.DeleteByMemberID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member purchases: %w", err)
	}
	if err := s.sessionRepo.DeleteByMemberID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member sessions: %w", err)
	}
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	slog.Warn("Member purged with full history", "memberId", id, "mobile", member.Mobile)
	return nil
}
