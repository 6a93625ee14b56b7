package services

import (
	"context"
	"fmt"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"github.com/untangle-ph/untangle-backend/internal/utils"
)

// Compile-time check to ensure DashboardServiceImpl implements DashboardService
var _ DashboardService = (*DashboardServiceImpl)(nil)

// DashboardServiceImpl is a read-only consumer of the ledger. All balance
// figures are derived from the granted/used sums at query time.
type DashboardServiceImpl struct {
	memberRepo   repositories.MemberRepository
	purchaseRepo repositories.PurchaseRepository
	sessionRepo  repositories.SessionRepository
	cfg          *config.Config
	now          func() time.Time
}

// NewDashboardService creates a new DashboardServiceImpl
func NewDashboardService(memberRepo repositories.MemberRepository, purchaseRepo repositories.PurchaseRepository, sessionRepo repositories.SessionRepository, cfg *config.Config) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		memberRepo:   memberRepo,
		purchaseRepo: purchaseRepo,
		sessionRepo:  sessionRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// OverallStats aggregates the headline dashboard numbers
func (s *DashboardServiceImpl) OverallStats(ctx context.Context) (*models.OverallStats, error) {
	today := utils.DateOf(s.now())
	stats := &models.OverallStats{}

	var err error
	if stats.TotalMembers, err = s.memberRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if stats.ActiveMembers, err = s.memberRepo.CountActive(ctx, today); err != nil {
		return nil, fmt.Errorf("failed to count active members: %w", err)
	}
	if stats.ExpiredMembers, err = s.memberRepo.CountExpired(ctx, today); err != nil {
		return nil, fmt.Errorf("failed to count expired members: %w", err)
	}
	if stats.TotalRevenue, err = s.purchaseRepo.SumAmount(ctx, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	granted, used, err := s.memberRepo.SumHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum member hours: %w", err)
	}
	stats.TotalHoursGranted = granted
	stats.TotalHoursUsed = used
	stats.TotalBalanceHours = granted - used

	if stats.ActiveSessions, err = s.sessionRepo.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	horizon := today.AddDate(0, 0, s.cfg.Ledger.ExpiringSoonDays)
	if stats.MembersExpiringSoon, err = s.memberRepo.CountExpiringBetween(ctx, today, horizon); err != nil {
		return nil, fmt.Errorf("failed to count expiring members: %w", err)
	}
	if stats.PendingRollovers, err = s.purchaseRepo.CountByRolloverStatus(ctx, models.RolloverPending); err != nil {
		return nil, fmt.Errorf("failed to count pending rollovers: %w", err)
	}

	return stats, nil
}

// RevenueStats aggregates purchase revenue for the current and previous month
func (s *DashboardServiceImpl) RevenueStats(ctx context.Context) (*models.RevenueStats, error) {
	now := s.now()
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfLastMonth := firstOfThisMonth.AddDate(0, -1, 0)
	firstOfNextMonth := firstOfThisMonth.AddDate(0, 1, 0)

	stats := &models.RevenueStats{}

	var err error
	if stats.TotalRevenue, err = s.purchaseRepo.SumAmount(ctx, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if stats.RevenueThisMonth, err = s.purchaseRepo.SumAmount(ctx, &firstOfThisMonth, &firstOfNextMonth); err != nil {
		return nil, fmt.Errorf("failed to sum this month's revenue: %w", err)
	}
	if stats.RevenueLastMonth, err = s.purchaseRepo.SumAmount(ctx, &firstOfLastMonth, &firstOfThisMonth); err != nil {
		return nil, fmt.Errorf("failed to sum last month's revenue: %w", err)
	}
	if stats.TotalPurchases, err = s.purchaseRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}
	if stats.PurchasesThisMonth, err = s.purchaseRepo.CountByDateRange(ctx, firstOfThisMonth, firstOfNextMonth); err != nil {
		return nil, fmt.Errorf("failed to count this month's purchases: %w", err)
	}

	if stats.TotalPurchases > 0 {
		stats.AveragePurchaseValue = stats.TotalRevenue / float64(stats.TotalPurchases)
	}

	return stats, nil
}

// TopMembersByUsage ranks members by total hours consumed
func (s *DashboardServiceImpl) TopMembersByUsage(ctx context.Context, limit int) ([]models.TopMember, error) {
	members, err := s.memberRepo.TopByHoursUsed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank members by usage: %w", err)
	}

	top := make([]models.TopMember, 0, len(members))
	for _, m := range members {
		top = append(top, models.TopMember{
			MemberID: m.ID,
			Mobile:   m.Mobile,
			FullName: m.FullName,
			Total:    m.HoursUsed,
		})
	}
	return top, nil
}

// TopMembersBySpend ranks members by total amount paid
func (s *DashboardServiceImpl) TopMembersBySpend(ctx context.Context, limit int) ([]models.TopMember, error) {
	return s.purchaseRepo.TopBySpend(ctx, limit)
}

// ExpiringMembers lists members whose plan expires within the given number of
// days from today, soonest first. A non-positive horizon falls back to the
// configured expiring-soon window.
func (s *DashboardServiceImpl) ExpiringMembers(ctx context.Context, days int) ([]models.ExpiringMember, error) {
	if days <= 0 {
		days = s.cfg.Ledger.ExpiringSoonDays
	}
	today := utils.DateOf(s.now())
	horizon := today.AddDate(0, 0, days)

	members, err := s.memberRepo.FindExpiringBetween(ctx, today, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring members: %w", err)
	}

	out := make([]models.ExpiringMember, 0, len(members))
	for _, m := range members {
		if m.ExpiryDate == nil {
			continue
		}
		expiry := utils.DateOf(*m.ExpiryDate)
		out = append(out, models.ExpiringMember{
			MemberID:        m.ID,
			FullName:        m.FullName,
			Mobile:          m.Mobile,
			BalanceHours:    m.BalanceHours(),
			ExpiryDate:      expiry,
			DaysUntilExpiry: int(expiry.Sub(today).Hours() / 24),
		})
	}
	return out, nil
}

// RevenueChart buckets revenue per day over [start, end]. Missing bounds
// default to the last 30 days ending today.
func (s *DashboardServiceImpl) RevenueChart(ctx context.Context, start, end *time.Time) (*models.RevenueChart, error) {
	endDate := utils.DateOf(s.now())
	if end != nil {
		endDate = utils.DateOf(*end)
	}
	startDate := endDate.AddDate(0, 0, -30)
	if start != nil {
		startDate = utils.DateOf(*start)
	}
	if startDate.After(endDate) {
		return nil, apperrors.InvalidArgument("start date is after end date")
	}

	// The bucket query is half-open, so push the upper bound one day past the
	// inclusive end date.
	days, err := s.purchaseRepo.RevenueByDay(ctx, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to bucket revenue by day: %w", err)
	}

	chart := &models.RevenueChart{
		StartDate: startDate,
		EndDate:   endDate,
		Days:      days,
	}
	for _, d := range days {
		chart.TotalRevenue += d.Revenue
	}
	return chart, nil
}

// Export dumps the whole ledger, optionally restricted to records dated in
// [from, until). Members are always included in full so exported purchases
// and sessions can be joined against them.
func (s *DashboardServiceImpl) Export(ctx context.Context, from, until *time.Time) (*models.ExportData, error) {
	members, err := s.memberRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export members: %w", err)
	}
	purchases, err := s.purchaseRepo.FindBetween(ctx, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to export purchases: %w", err)
	}
	sessions, err := s.sessionRepo.FindBetween(ctx, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to export sessions: %w", err)
	}

	return &models.ExportData{
		GeneratedAt: s.now(),
		Members:     members,
		Purchases:   purchases,
		Sessions:    sessions,
	}, nil
}
