package services

import (
	"context"
	"errors"

	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure BranchServiceImpl implements BranchService
var _ BranchService = (*BranchServiceImpl)(nil)

// BranchServiceImpl handles branch management
type BranchServiceImpl struct {
	branchRepo repositories.BranchRepository
}

// NewBranchService creates a new BranchServiceImpl
func NewBranchService(branchRepo repositories.BranchRepository) *BranchServiceImpl {
	return &BranchServiceImpl{branchRepo: branchRepo}
}

// CreateBranch creates a new branch
func (s *BranchServiceImpl) CreateBranch(ctx context.Context, branch *models.Branch) error {
	if branch.Name == "" {
		return apperrors.InvalidArgument("branch name is required")
	}
	branch.IsActive = true
	return s.branchRepo.Create(ctx, branch)
}

// GetBranchByID retrieves a branch by ID
func (s *BranchServiceImpl) GetBranchByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("branch", id.Hex())
		}
		return nil, err
	}
	return branch, nil
}

// ListBranches retrieves all branches
func (s *BranchServiceImpl) ListBranches(ctx context.Context) ([]*models.Branch, error) {
	return s.branchRepo.FindAll(ctx)
}
