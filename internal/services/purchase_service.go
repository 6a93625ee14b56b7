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

// Compile-time check to ensure PurchaseServiceImpl implements PurchaseService
var _ PurchaseService = (*PurchaseServiceImpl)(nil)

// PurchaseServiceImpl owns the purchase ledger: grants, expiry extension and
// the rollover state machine.
type PurchaseServiceImpl struct {
	purchaseRepo repositories.PurchaseRepository
	memberRepo   repositories.MemberRepository
	locks        *MemberLocks
	now          func() time.Time
}

// NewPurchaseService creates a new PurchaseServiceImpl
func NewPurchaseService(purchaseRepo repositories.PurchaseRepository, memberRepo repositories.MemberRepository, locks *MemberLocks) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		purchaseRepo: purchaseRepo,
		memberRepo:   memberRepo,
		locks:        locks,
		now:          time.Now,
	}
}

// CreatePurchase records a credit purchase: it writes the purchase with its
// computed expiry and rollover-deadline dates, grants the hours to the member,
// and raises the member's expiry date when this purchase expires later than
// any previous one. The member's expiry date is never lowered.
func (s *PurchaseServiceImpl) CreatePurchase(ctx context.Context, in CreatePurchaseInput) (*models.Purchase, error) {
	if in.HoursGranted <= 0 {
		return nil, apperrors.InvalidArgument("hours granted must be greater than 0")
	}
	if in.AmountPaid < 0 {
		return nil, apperrors.InvalidArgument("amount paid cannot be negative")
	}

	unlock := s.locks.Lock(in.MemberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, in.MemberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", in.MemberID.Hex())
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}

	purchaseDate := s.now()
	if in.PurchaseDate != nil {
		purchaseDate = *in.PurchaseDate
	}

	purchase := &models.Purchase{
		MemberID:       member.ID,
		Mobile:         member.Mobile,
		PlanName:       in.PlanName,
		AmountPaid:     in.AmountPaid,
		HoursGranted:   utils.RoundHours(in.HoursGranted),
		PurchaseDate:   purchaseDate,
		RolloverStatus: models.RolloverPending,
		CreatedBy:      in.CreatedBy,
	}
	purchase.CalculateExpiryDates()

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	member.HoursGranted = utils.RoundHours(member.HoursGranted + purchase.HoursGranted)
	member.CurrentPlan = purchase.PlanName
	if member.ExpiryDate == nil || purchase.ExpiryDate.After(*member.ExpiryDate) {
		expiry := purchase.ExpiryDate
		member.ExpiryDate = &expiry
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		// Undo the insert so a failed grant leaves no orphan purchase behind.
		if delErr := s.purchaseRepo.Delete(ctx, purchase.ID); delErr != nil {
			slog.Error("Failed to undo purchase after member update failure", "purchaseId", purchase.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to grant hours to member: %w", err)
	}

	slog.Info("Purchase recorded",
		"mobile", member.Mobile,
		"plan", purchase.PlanName,
		"hours", purchase.HoursGranted,
		"expires", purchase.ExpiryDate.Format("2006-01-02"))
	return purchase, nil
}

// GetPurchaseByID retrieves a purchase by ID
func (s *PurchaseServiceImpl) GetPurchaseByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("purchase", id.Hex())
		}
		return nil, err
	}
	return purchase, nil
}

// ListPurchases retrieves purchases with filters and pagination
func (s *PurchaseServiceImpl) ListPurchases(ctx context.Context, filter repositories.PurchaseFilter, page, limit int) ([]*models.Purchase, int64, error) {
	return s.purchaseRepo.FindAll(ctx, filter, page, limit)
}

// ApplyRollover transfers a pending purchase's unused hours into the member's
// balance. Unless forced, the purchase must be expired, inside its 180-day
// rollover window, and the member must have renewed within that window.
//
// The rolled amount is min(member balance, this purchase's granted hours),
// floored at zero. This is a balance-level figure, not a per-purchase
// consumption trace.
func (s *PurchaseServiceImpl) ApplyRollover(ctx context.Context, purchaseID primitive.ObjectID, force bool) (*models.Purchase, error) {
	purchase, err := s.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(purchase.MemberID)
	defer unlock()

	// Re-read under the lock; another request may have resolved it already.
	purchase, err = s.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if purchase.RolloverStatus.Terminal() {
		return nil, apperrors.InvalidState("purchase rollover already %s", purchase.RolloverStatus)
	}

	today := utils.DateOf(s.now())

	if !force {
		if !today.After(purchase.ExpiryDate) {
			return nil, apperrors.InvalidState("cannot rollover - purchase not yet expired, expires on %s", purchase.ExpiryDate.Format("2006-01-02"))
		}

		if today.After(purchase.RolloverDeadline) {
			purchase.RolloverStatus = models.RolloverExpired
			if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
				return nil, fmt.Errorf("failed to expire purchase rollover: %w", err)
			}
			return nil, apperrors.DeadlineExceeded("rollover deadline passed on %s, unused hours forfeited", purchase.RolloverDeadline.Format("2006-01-02"))
		}

		// Renewal window is (expiry_date, rollover_deadline] in whole days.
		from := purchase.ExpiryDate.AddDate(0, 0, 1)
		until := purchase.RolloverDeadline.AddDate(0, 0, 1)
		_, err := s.purchaseRepo.FindRenewal(ctx, purchase.MemberID, from, until, purchase.ID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperrors.PreconditionFailed("no renewal found within the 180-day window, member must renew to claim rollover")
			}
			return nil, fmt.Errorf("failed to look up renewal purchase: %w", err)
		}
	}

	member, err := s.memberRepo.FindByID(ctx, purchase.MemberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", purchase.MemberID.Hex())
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}

	rolloverHours := member.BalanceHours()
	if rolloverHours > purchase.HoursGranted {
		rolloverHours = purchase.HoursGranted
	}
	if rolloverHours < 0 {
		rolloverHours = 0
	}
	rolloverHours = utils.RoundHours(rolloverHours)

	appliedAt := today
	purchase.RolloverHours = &rolloverHours
	purchase.RolloverStatus = models.RolloverCompleted
	purchase.RolloverAppliedAt = &appliedAt

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to update purchase rollover: %w", err)
	}

	member.HoursGranted = utils.RoundHours(member.HoursGranted + rolloverHours)
	if err := s.memberRepo.Update(ctx, member); err != nil {
		// Put the purchase back so the grant can be retried.
		purchase.RolloverHours = nil
		purchase.RolloverStatus = models.RolloverPending
		purchase.RolloverAppliedAt = nil
		if revErr := s.purchaseRepo.Update(ctx, purchase); revErr != nil {
			slog.Error("Failed to revert rollover after member update failure", "purchaseId", purchase.ID, "error", revErr)
		}
		return nil, fmt.Errorf("failed to grant rollover hours: %w", err)
	}

	slog.Info("Rollover applied",
		"purchaseId", purchase.ID,
		"mobile", purchase.Mobile,
		"hours", rolloverHours,
		"forced", force)
	return purchase, nil
}

// SweepExpiredRollovers forfeits every pending rollover whose deadline has
// passed. No balance changes; the count of transitioned purchases is
// returned. Running the sweep again immediately transitions nothing.
func (s *PurchaseServiceImpl) SweepExpiredRollovers(ctx context.Context) (int64, error) {
	count, err := s.purchaseRepo.ExpireOverdue(ctx, utils.DateOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired rollovers: %w", err)
	}
	if count > 0 {
		slog.Info("Rollover sweep forfeited overdue purchases", "count", count)
	}
	return count, nil
}
