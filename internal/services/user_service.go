package services

import (
	"context"
	"log"
	"time"

	"crately/internal/caching"
	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// CreateUserRequest carries the fields an admin sets when inviting a user.
type CreateUserRequest struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type UserService interface {
	// Create invites a new user: the account starts inactive with a one-time
	// invite token the admin hands to the invitee. Admin only.
	Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	// List returns all users with secrets redacted; any authenticated user
	// may list (names are needed to pick a grantee when sharing).
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type userService struct {
	userRepo   repositories.UserRepository
	accessRepo repositories.ContainerAccessRepository
	authSvc    AuthService
	cacheSvc   caching.CacheService
}

func NewUserService(userRepo repositories.UserRepository, accessRepo repositories.ContainerAccessRepository,
	authSvc AuthService, cacheSvc caching.CacheService) UserService {
	return &userService{
		userRepo:   userRepo,
		accessRepo: accessRepo,
		authSvc:    authSvc,
		cacheSvc:   cacheSvc,
	}
}

func (s *userService) Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error) {
	if err := s.authSvc.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}

	inviteToken, inviteExpires := NewInvite()
	user := &models.User{
		ID:            uuid.New(),
		Name:          req.Name,
		IsAdmin:       req.IsAdmin,
		IsActive:      false,
		InviteToken:   inviteToken,
		InviteExpires: &inviteExpires,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User %s invited by %s", user.ID, actor.ID)

	// Returned with the invite token included: the admin has to relay it.
	// There is no code to redact yet.
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Redacted(), nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	redacted := make([]*models.User, 0, len(users))
	for _, user := range users {
		redacted = append(redacted, user.Redacted())
	}
	return redacted, nil
}

func (s *userService) Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.UserPatch) (*models.User, error) {
	if err := s.authSvc.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if patch.Name.Set && !patch.Name.Some() {
		return nil, common.Validationf("name cannot be cleared")
	}
	if patch.IsAdmin.Set && !patch.IsAdmin.Some() {
		return nil, common.Validationf("is_admin cannot be cleared")
	}

	updated, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return updated.Redacted(), nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.authSvc.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return common.Conflictf("cannot delete your own account")
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	// Cascade: grants naming the user go with them.
	if err := s.accessRepo.DeleteByUser(ctx, id); err != nil {
		return err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.InvalidateVisibility(ctx, id); err != nil {
			log.Printf("WARN: visibility cache invalidation failed for user %s: %v", id, err)
		}
	}
	return nil
}
