package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMemberTestService(now time.Time) (*MemberServiceImpl, *fakeMemberRepo, *fakePurchaseRepo, *fakeSessionRepo) {
	memberRepo := newFakeMemberRepo()
	purchaseRepo := newFakePurchaseRepo()
	sessionRepo := newFakeSessionRepo()
	svc := NewMemberService(memberRepo, purchaseRepo, sessionRepo, NewMemberLocks())
	svc.now = func() time.Time { return now }
	return svc, memberRepo, purchaseRepo, sessionRepo
}

func TestCreateMemberNormalizesMobile(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newMemberTestService(now)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{
		FullName: "Ana Cruz",
		Mobile:   "+63 917 123 4567",
	})
	require.NoError(t, err)
	assert.Equal(t, "9171234567", member.Mobile)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), member.RegistrationDate)
}

func TestCreateMemberRejectsDuplicateMobile(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newMemberTestService(now)

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ana Cruz", Mobile: "09171234567"})
	require.NoError(t, err)

	// Same number in a different spelling still collides.
	_, err = svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Impostor", Mobile: "+639171234567"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestCreateMemberValidation(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newMemberTestService(now)

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "", Mobile: "09171234567"})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))

	_, err = svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ana Cruz", Mobile: "12345"})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestGetMemberByMobileNormalizesLookup(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newMemberTestService(now)

	created, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ana Cruz", Mobile: "09171234567"})
	require.NoError(t, err)

	found, err := svc.GetMemberByMobile(context.Background(), "+63-917-123-4567")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetMemberByMobile(context.Background(), "09170000000")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestUpdateMemberMobileConflict(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newMemberTestService(now)

	first, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ana Cruz", Mobile: "09171234567"})
	require.NoError(t, err)
	second, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ben Reyes", Mobile: "09179999999"})
	require.NoError(t, err)

	taken := "09171234567"
	_, err = svc.UpdateMember(context.Background(), second.ID, UpdateMemberInput{Mobile: &taken})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	// Re-submitting a member's own number is not a conflict.
	own := "0917 123 4567"
	updated, err := svc.UpdateMember(context.Background(), first.ID, UpdateMemberInput{Mobile: &own})
	require.NoError(t, err)
	assert.Equal(t, "9171234567", updated.Mobile)
}

func TestPurgeMemberDeletesHistory(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	svc, memberRepo, purchaseRepo, sessionRepo := newMemberTestService(now)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ana Cruz", Mobile: "09171234567"})
	require.NoError(t, err)
	other, err := svc.CreateMember(context.Background(), CreateMemberInput{FullName: "Ben Reyes", Mobile: "09179999999"})
	require.NoError(t, err)

	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{MemberID: member.ID, HoursGranted: 100, PurchaseDate: now}))
	require.NoError(t, purchaseRepo.Create(context.Background(), &models.Purchase{MemberID: other.ID, HoursGranted: 50, PurchaseDate: now}))
	require.NoError(t, sessionRepo.Create(context.Background(), &models.GamingSession{MemberID: member.ID, StartTime: now, Status: models.SessionCompleted}))

	require.NoError(t, svc.PurgeMember(context.Background(), member.ID))

	_, err = memberRepo.FindByID(context.Background(), member.ID)
	assert.Error(t, err)

	remaining, _, err := purchaseRepo.FindAll(context.Background(), repositories.PurchaseFilter{MemberID: other.ID}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "other members' history must survive a purge")

	count, err := purchaseRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = svc.PurgeMember(context.Background(), primitive.NewObjectID())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
