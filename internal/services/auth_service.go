package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"github.com/untangle-ph/untangle-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl handles staff authentication
type AuthServiceImpl struct {
	staffRepo repositories.StaffRepository
	cfg       *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(staffRepo repositories.StaffRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{
		staffRepo: staffRepo,
		cfg:       cfg,
	}
}

// Register creates a staff account with a bcrypt-hashed password
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.Staff, error) {
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleAdmin && role != models.RoleManager && role != models.RoleStaff {
		return nil, apperrors.InvalidArgument("unknown role %q", role)
	}

	_, err := s.staffRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperrors.Conflict("email %s already registered", req.Email)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check existing staff: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := &models.Staff{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff account: %w", err)
	}

	slog.Info("Staff account created", "email", staff.Email, "role", staff.Role)
	return staff, nil
}

// Login authenticates a staff account and issues a JWT
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	staff, err := s.staffRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("failed to retrieve staff account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if !staff.IsActive {
		return nil, apperrors.Unauthorized("account is inactive")
	}

	token, err := utils.GenerateJWT(staff.ID.Hex(), staff.Role, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Staff:       staff,
	}, nil
}

// GetStaffByID retrieves a staff account by ID
func (s *AuthServiceImpl) GetStaffByID(ctx context.Context, id primitive.ObjectID) (*models.Staff, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("staff", id.Hex())
		}
		return nil, err
	}
	return staff, nil
}
