package repositories

import (
	"context"
	"errors"
	"time"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/store"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByCode looks up an active user by login code. Inactive users have no
	// code, so the is_active filter doubles as a correctness guard.
	GetByCode(ctx context.Context, code string) (*models.User, bool, error)
	GetByInviteToken(ctx context.Context, token string) (*models.User, bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.UserPatch) (*models.User, error)
	// SetAuthState atomically rewrites the activation state machine fields.
	SetAuthState(ctx context.Context, id uuid.UUID, code *string, isActive bool, inviteToken *string, inviteExpires *time.Time) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type userRepo struct {
	db store.Store
}

func NewUserRepo(db store.Store) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.Insert(ctx, store.KindUsers, user.ID.String(), user); err != nil {
		return common.Internalf(err, "failed to store user")
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	found, err := r.db.FindOne(ctx, store.KindUsers, store.Filter{"id": id}, user)
	if err != nil {
		return nil, common.Internalf(err, "failed to load user")
	}
	if !found {
		return nil, common.NotFoundf("user not found")
	}
	return user, nil
}

func (r *userRepo) GetByCode(ctx context.Context, code string) (*models.User, bool, error) {
	user := &models.User{}
	found, err := r.db.FindOne(ctx, store.KindUsers, store.Filter{"code": code, "is_active": true}, user)
	if err != nil {
		return nil, false, common.Internalf(err, "failed to look up user by code")
	}
	return user, found, nil
}

func (r *userRepo) GetByInviteToken(ctx context.Context, token string) (*models.User, bool, error) {
	user := &models.User{}
	found, err := r.db.FindOne(ctx, store.KindUsers, store.Filter{"invite_token": token, "is_active": false}, user)
	if err != nil {
		return nil, false, common.Internalf(err, "failed to look up invite")
	}
	return user, found, nil
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.FindMany(ctx, store.KindUsers, nil, &users); err != nil {
		return nil, common.Internalf(err, "failed to list users")
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, patch *models.UserPatch) (*models.User, error) {
	partial := map[string]any{}
	if patch.Name.Set {
		partial["name"] = patch.Name.Value
	}
	if patch.IsAdmin.Set {
		partial["is_admin"] = patch.IsAdmin.Value
	}
	if len(partial) > 0 {
		if err := r.db.Update(ctx, store.KindUsers, id.String(), partial); err != nil {
			if errors.Is(err, store.ErrNoRecord) {
				return nil, common.NotFoundf("user not found")
			}
			return nil, common.Internalf(err, "failed to update user")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) SetAuthState(ctx context.Context, id uuid.UUID, code *string, isActive bool, inviteToken *string, inviteExpires *time.Time) (*models.User, error) {
	partial := map[string]any{
		"code":           code,
		"is_active":      isActive,
		"invite_token":   inviteToken,
		"invite_expires": inviteExpires,
	}
	if err := r.db.Update(ctx, store.KindUsers, id.String(), partial); err != nil {
		if errors.Is(err, store.ErrNoRecord) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, common.Internalf(err, "failed to update user auth state")
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.DeleteOne(ctx, store.KindUsers, id.String()); err != nil {
		return common.Internalf(err, "failed to delete user")
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.db.Count(ctx, store.KindUsers, nil)
	if err != nil {
		return 0, common.Internalf(err, "failed to count users")
	}
	return count, nil
}
