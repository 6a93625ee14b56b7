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

// Compile-time check to ensure SessionServiceImpl implements SessionService
var _ SessionService = (*SessionServiceImpl)(nil)

// SessionServiceImpl handles session accounting: timed usage windows and the
// hour deductions they apply to member balances.
type SessionServiceImpl struct {
	sessionRepo repositories.SessionRepository
	memberRepo  repositories.MemberRepository
	locks       *MemberLocks
	now         func() time.Time
}

// NewSessionService creates a new SessionServiceImpl
func NewSessionService(sessionRepo repositories.SessionRepository, memberRepo repositories.MemberRepository, locks *MemberLocks) *SessionServiceImpl {
	return &SessionServiceImpl{
		sessionRepo: sessionRepo,
		memberRepo:  memberRepo,
		locks:       locks,
		now:         time.Now,
	}
}

// StartSession opens a gaming session for a member. The member must exist,
// hold an unexpired plan with a positive balance, and have no other active
// session. The active-session check and the insert run under the member's
// lock so two concurrent starts cannot both pass.
func (s *SessionServiceImpl) StartSession(ctx context.Context, in StartSessionInput) (*models.GamingSession, error) {
	unlock := s.locks.Lock(in.MemberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, in.MemberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", in.MemberID.Hex())
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}

	now := s.now()

	if member.IsExpiredAt(now) {
		return nil, apperrors.InvalidState("member's plan expired on %s, renew to continue", member.ExpiryDate.Format("2006-01-02"))
	}
	if member.BalanceHours() <= 0 {
		return nil, apperrors.InvalidState("member has no remaining hours, current balance: %.2f", member.BalanceHours())
	}

	active, err := s.sessionRepo.FindActiveByMemberID(ctx, in.MemberID)
	if err == nil {
		return nil, apperrors.Conflict("member already has an active session, started at %s", active.StartTime.Format(time.RFC3339))
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	session := &models.GamingSession{
		MemberID:  member.ID,
		Mobile:    member.Mobile,
		BranchID:  in.BranchID,
		Date:      utils.DateOf(now),
		StartTime: now,
		Station:   in.Station,
		Activity:  in.Activity,
		StaffName: in.StaffName,
		Notes:     in.Notes,
		Status:    models.SessionActive,
		CreatedBy: in.CreatedBy,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Session started", "mobile", member.Mobile, "station", session.Station, "sessionId", session.ID)
	return session, nil
}

// EndSession completes an active session and deducts the consumed hours from
// the member's balance.
//
// Hours are the elapsed seconds divided by 3600, rounded to 2 decimal places
// half away from zero, unless a privileged caller supplies manual hours. The
// deduction is clamped to the member's remaining balance and floored at zero;
// clamping is policy, not an error. Notes are appended to any existing
// session notes, never replaced.
func (s *SessionServiceImpl) EndSession(ctx context.Context, sessionID primitive.ObjectID, in EndSessionInput) (*models.GamingSession, error) {
	session, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(session.MemberID)
	defer unlock()

	// Re-read under the lock; a concurrent end or void may have won.
	session, err = s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, apperrors.InvalidState("session already ended, status is %s", session.Status)
	}

	if in.ManualHours != nil && !in.Privileged {
		return nil, apperrors.Forbidden("manual hours override requires a privileged caller")
	}

	member, err := s.memberRepo.FindByID(ctx, session.MemberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("member", session.MemberID.Hex())
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}

	endTime := s.now()

	var hours float64
	if in.ManualHours != nil {
		hours = *in.ManualHours
	} else {
		hours = endTime.Sub(session.StartTime).Seconds() / 3600
	}
	hours = utils.RoundHours(hours)

	// Never deduct more than the member has left.
	if balance := member.BalanceHours(); hours > balance {
		hours = utils.RoundHours(balance)
	}
	if hours < 0 {
		hours = 0
	}

	session.EndTime = &endTime
	session.HoursConsumed = hours
	session.Status = models.SessionCompleted
	if in.Notes != "" {
		if session.Notes != "" {
			session.Notes += "\n" + in.Notes
		} else {
			session.Notes = in.Notes
		}
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	member.HoursUsed = utils.RoundHours(member.HoursUsed + hours)
	if err := s.memberRepo.Update(ctx, member); err != nil {
		// Reopen the session so the deduction can be retried.
		session.EndTime = nil
		session.HoursConsumed = 0
		session.Status = models.SessionActive
		if revErr := s.sessionRepo.Update(ctx, session); revErr != nil {
			slog.Error("Failed to reopen session after member update failure", "sessionId", session.ID, "error", revErr)
		}
		return nil, fmt.Errorf("failed to deduct hours from member: %w", err)
	}

	slog.Info("Session ended",
		"sessionId", session.ID,
		"mobile", session.Mobile,
		"hours", hours,
		"manual", in.ManualHours != nil)
	return session, nil
}

// VoidSession terminally voids a session. An active session is closed with no
// deduction; a completed session has its consumed hours refunded back out of
// the member's used total. Voiding a voided session is rejected.
func (s *SessionServiceImpl) VoidSession(ctx context.Context, sessionID primitive.ObjectID, reason string) (*models.GamingSession, error) {
	session, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(session.MemberID)
	defer unlock()

	session, err = s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionVoided {
		return nil, apperrors.InvalidState("session already voided")
	}

	refund := 0.0
	if session.Status == models.SessionCompleted {
		refund = session.HoursConsumed
	}

	if session.EndTime == nil {
		endTime := s.now()
		session.EndTime = &endTime
	}
	session.Status = models.SessionVoided
	if reason != "" {
		if session.Notes != "" {
			session.Notes += "\nVoided: " + reason
		} else {
			session.Notes = "Voided: " + reason
		}
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to void session: %w", err)
	}

	if refund > 0 {
		member, err := s.memberRepo.FindByID(ctx, session.MemberID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve member for refund: %w", err)
		}
		member.HoursUsed = utils.RoundHours(member.HoursUsed - refund)
		if member.HoursUsed < 0 {
			member.HoursUsed = 0
		}
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to refund hours to member: %w", err)
		}
	}

	slog.Info("Session voided", "sessionId", session.ID, "mobile", session.Mobile, "refundedHours", refund)
	return session, nil
}

// GetSessionByID retrieves a session by ID
func (s *SessionServiceImpl) GetSessionByID(ctx context.Context, id primitive.ObjectID) (*models.GamingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("session", id.Hex())
		}
		return nil, err
	}
	return session, nil
}

// GetActiveSessions retrieves all open sessions
func (s *SessionServiceImpl) GetActiveSessions(ctx context.Context) ([]*models.GamingSession, error) {
	return s.sessionRepo.FindActive(ctx)
}

// ListSessions retrieves sessions with filters and pagination
func (s *SessionServiceImpl) ListSessions(ctx context.Context, filter repositories.SessionFilter, page, limit int) ([]*models.GamingSession, int64, error) {
	return s.sessionRepo.FindAll(ctx, filter, page, limit)
}
