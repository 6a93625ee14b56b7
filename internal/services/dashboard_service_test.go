package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/models"
)

func newDashboardTestService(now time.Time) (*DashboardServiceImpl, *fakeMemberRepo, *fakePurchaseRepo, *fakeSessionRepo) {
	memberRepo := newFakeMemberRepo()
	purchaseRepo := newFakePurchaseRepo()
	sessionRepo := newFakeSessionRepo()
	cfg := &config.Config{Ledger: config.LedgerConfig{ExpiringSoonDays: 30}}
	svc := NewDashboardService(memberRepo, purchaseRepo, sessionRepo, cfg)
	svc.now = func() time.Time { return now }
	return svc, memberRepo, purchaseRepo, sessionRepo
}

func TestExpiringMembersListsSoonestFirst(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, memberRepo, _, _ := newDashboardTestService(now)

	in5 := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	in20 := time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC)
	in90 := time.Date(2026, 11, 28, 0, 0, 0, 0, time.UTC)
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000001", FullName: "Ben Reyes", ExpiryDate: &in20, HoursGranted: 50, HoursUsed: 10})
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000002", FullName: "Ana Cruz", ExpiryDate: &in5, HoursGranted: 20, HoursUsed: 5})
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000003", FullName: "Leo Tan", ExpiryDate: &in90})
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000004", FullName: "No Expiry"})

	members, err := svc.ExpiringMembers(context.Background(), 30)
	require.NoError(t, err)

	require.Len(t, members, 2, "members beyond the horizon or without expiry are excluded")
	assert.Equal(t, "Ana Cruz", members[0].FullName)
	assert.Equal(t, 5, members[0].DaysUntilExpiry)
	assert.Equal(t, 15.0, members[0].BalanceHours)
	assert.Equal(t, "Ben Reyes", members[1].FullName)
	assert.Equal(t, 20, members[1].DaysUntilExpiry)
}

func TestExpiringMembersDefaultsHorizon(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, memberRepo, _, _ := newDashboardTestService(now)

	in20 := time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC)
	in90 := time.Date(2026, 11, 28, 0, 0, 0, 0, time.UTC)
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000001", FullName: "Ben Reyes", ExpiryDate: &in20})
	seedMember(t, memberRepo, &models.Member{Mobile: "9170000002", FullName: "Leo Tan", ExpiryDate: &in90})

	members, err := svc.ExpiringMembers(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ben Reyes", members[0].FullName)
}

func TestRevenueChartBucketsByDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, purchaseRepo, _ := newDashboardTestService(now)

	aug10 := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	aug20 := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for _, p := range []*models.Purchase{
		{Mobile: "9170000001", AmountPaid: 1000, PurchaseDate: aug10},
		{Mobile: "9170000002", AmountPaid: 500, PurchaseDate: aug10},
		{Mobile: "9170000001", AmountPaid: 2000, PurchaseDate: aug20},
		// Outside the requested range.
		{Mobile: "9170000003", AmountPaid: 9999, PurchaseDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
	} {
		require.NoError(t, purchaseRepo.Create(context.Background(), p))
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	chart, err := svc.RevenueChart(context.Background(), &start, &end)
	require.NoError(t, err)

	require.Len(t, chart.Days, 2)
	assert.Equal(t, "2026-08-10", chart.Days[0].Date)
	assert.Equal(t, 1500.0, chart.Days[0].Revenue)
	assert.Equal(t, int64(2), chart.Days[0].Purchases)
	assert.Equal(t, "2026-08-20", chart.Days[1].Date)
	assert.Equal(t, 2000.0, chart.Days[1].Revenue)
	assert.Equal(t, 3500.0, chart.TotalRevenue)
}

func TestRevenueChartDefaultsToLastThirtyDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, purchaseRepo, _ := newDashboardTestService(now)

	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{
		Mobile: "9170000001", AmountPaid: 750,
		PurchaseDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{
		Mobile: "9170000001", AmountPaid: 9999,
		PurchaseDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}))

	chart, err := svc.RevenueChart(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), chart.StartDate)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), chart.EndDate)
	require.Len(t, chart.Days, 1)
	assert.Equal(t, 750.0, chart.TotalRevenue)
}

func TestRevenueChartRejectsInvertedRange(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newDashboardTestService(now)

	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.RevenueChart(context.Background(), &start, &end)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestExportFiltersPurchasesAndSessionsByDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, memberRepo, purchaseRepo, sessionRepo := newDashboardTestService(now)

	member := seedMember(t, memberRepo, &models.Member{Mobile: "9171234567", FullName: "Ana Cruz"})
	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{
		MemberID: member.ID, Mobile: member.Mobile, AmountPaid: 1000,
		PurchaseDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{
		MemberID: member.ID, Mobile: member.Mobile, AmountPaid: 500,
		PurchaseDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, sessionRepo.Create(context.Background(), &models.GamingSession{
		MemberID: member.ID, Mobile: member.Mobile, Status: models.SessionCompleted,
		StartTime: time.Date(2026, 8, 12, 14, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, sessionRepo.Create(context.Background(), &models.GamingSession{
		MemberID: member.ID, Mobile: member.Mobile, Status: models.SessionCompleted,
		StartTime: time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC),
	}))

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	data, err := svc.Export(context.Background(), &from, &until)
	require.NoError(t, err)

	assert.Equal(t, now, data.GeneratedAt)
	// Members are always complete so the dated records can be joined back.
	assert.Len(t, data.Members, 1)
	require.Len(t, data.Purchases, 1)
	assert.Equal(t, 1000.0, data.Purchases[0].AmountPaid)
	require.Len(t, data.Sessions, 1)
	assert.Equal(t, time.Date(2026, 8, 12, 14, 0, 0, 0, time.UTC), data.Sessions[0].StartTime)
}

func TestExportUnboundedDumpsEverything(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, memberRepo, purchaseRepo, sessionRepo := newDashboardTestService(now)

	member := seedMember(t, memberRepo, &models.Member{Mobile: "9171234567", FullName: "Ana Cruz"})
	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{
		MemberID: member.ID, Mobile: member.Mobile, AmountPaid: 500,
		PurchaseDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, sessionRepo.Create(context.Background(), &models.GamingSession{
		MemberID: member.ID, Mobile: member.Mobile, Status: models.SessionCompleted,
		StartTime: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	}))

	data, err := svc.Export(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, data.Members, 1)
	assert.Len(t, data.Purchases, 1)
	assert.Len(t, data.Sessions, 1)
}
