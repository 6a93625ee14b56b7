package repositories

import (
	"context"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseFilter narrows purchase listings.
type PurchaseFilter struct {
	MemberID       primitive.ObjectID
	RolloverStatus models.RolloverStatus
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	MemberID   primitive.ObjectID
	BranchID   primitive.ObjectID
	ActiveOnly bool
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	FindByMobile(ctx context.Context, mobile string) (*models.Member, error)
	FindAll(ctx context.Context, search string, page, limit int) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, today time.Time) (int64, error)
	CountExpired(ctx context.Context, today time.Time) (int64, error)
	CountExpiringBetween(ctx context.Context, from, until time.Time) (int64, error)
	// FindExpiringBetween returns members whose plan expires in [from, until],
	// soonest first.
	FindExpiringBetween(ctx context.Context, from, until time.Time) ([]*models.Member, error)
	// All returns every member without pagination, for exports.
	All(ctx context.Context) ([]*models.Member, error)
	SumHours(ctx context.Context) (granted, used float64, err error)
	TopByHoursUsed(ctx context.Context, limit int) ([]*models.Member, error)
}

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	FindAll(ctx context.Context, filter PurchaseFilter, page, limit int) ([]*models.Purchase, int64, error)
	Update(ctx context.Context, purchase *models.Purchase) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error
	// FindRenewal returns any purchase by the member with a purchase date in
	// [from, until), excluding the given purchase id. Used for the rollover
	// renewal-window check; callers pass midnight bounds so the window is
	// day-granular.
	FindRenewal(ctx context.Context, memberID primitive.ObjectID, from, until time.Time, exclude primitive.ObjectID) (*models.Purchase, error)
	// ExpireOverdue transitions every pending purchase whose rollover deadline
	// is before today to the expired state and returns how many changed.
	ExpireOverdue(ctx context.Context, today time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByRolloverStatus(ctx context.Context, status models.RolloverStatus) (int64, error)
	CountByDateRange(ctx context.Context, from, until time.Time) (int64, error)
	SumAmount(ctx context.Context, from, until *time.Time) (float64, error)
	// RevenueByDay buckets revenue and purchase counts per purchase day over
	// [from, until). Days with no purchases yield no bucket.
	RevenueByDay(ctx context.Context, from, until time.Time) ([]models.DailyRevenue, error)
	// FindBetween returns purchases with a purchase date in the optional
	// [from, until) range, oldest first, for exports.
	FindBetween(ctx context.Context, from, until *time.Time) ([]*models.Purchase, error)
	TopBySpend(ctx context.Context, limit int) ([]models.TopMember, error)
}

// SessionRepository defines the interface for gaming session data operations
type SessionRepository interface {
	Create(ctx context.Context, session *models.GamingSession) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.GamingSession, error)
	FindActiveByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.GamingSession, error)
	FindActive(ctx context.Context) ([]*models.GamingSession, error)
	FindAll(ctx context.Context, filter SessionFilter, page, limit int) ([]*models.GamingSession, int64, error)
	Update(ctx context.Context, session *models.GamingSession) error
	DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error
	CountActive(ctx context.Context) (int64, error)
	// FindBetween returns sessions with a start time in the optional
	// [from, until) range, oldest first, for exports.
	FindBetween(ctx context.Context, from, until *time.Time) ([]*models.GamingSession, error)
}

// StaffRepository defines the interface for staff account data operations
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Staff, error)
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Count(ctx context.Context) (int64, error)
}

// BranchRepository defines the interface for branch data operations
type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error)
	FindAll(ctx context.Context) ([]*models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
}
