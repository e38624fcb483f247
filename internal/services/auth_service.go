package services

import (
	"context"
	"log"
	"regexp"
	"time"

	"crately/internal/caching"
	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const (
	// Invite tokens are one-time secrets; 32 chars of gommon random,
	// matching the shape of our other generated secrets.
	inviteTokenLength = 32
	inviteTTL         = 7 * 24 * time.Hour
	sessionTTL        = 30 * 24 * time.Hour
)

const sessionRevocationPrefix = "crately:session-revoked:"

// Login codes are short numeric strings, 4 to 6 digits.
var codePattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// AuthService is the auth gate: it resolves credentials to users, runs the
// invite/activation state machine and enforces admin and owner checks.
type AuthService interface {
	// Authenticate resolves a user id credential to an active user.
	Authenticate(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// Login resolves a login code to a user and issues a session token. The
	// error never reveals whether the code exists.
	Login(ctx context.Context, code string) (*models.User, string, error)
	// Activate redeems a one-time invite token, setting the chosen code and
	// flipping the user active. The token is dead afterwards.
	Activate(ctx context.Context, inviteToken, chosenCode string) (*models.User, string, error)
	// ResetInvite re-arms a user with a fresh invite, deactivating the
	// account and invalidating any previously issued credential. Admin only.
	ResetInvite(ctx context.Context, actor *models.User, userID uuid.UUID) (*models.User, error)

	// SessionRevoked reports whether a session token issued at issuedAt has
	// been killed by a later invite reset on that user.
	SessionRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) bool

	RequireAdmin(user *models.User) error
	RequireOwnerOrAdmin(user *models.User, container *models.Container) error

	IssueToken(user *models.User) (string, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *authService) Authenticate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, common.Unauthorizedf("missing credential")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.Unauthorizedf("invalid credential")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, common.Unauthorizedf("account is not active")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, code string) (*models.User, string, error) {
	user, found, err := s.userRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", common.Unauthorizedf("invalid login code")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user.Redacted(), token, nil
}

func (s *authService) Activate(ctx context.Context, inviteToken, chosenCode string) (*models.User, string, error) {
	if !codePattern.MatchString(chosenCode) {
		return nil, "", common.Validationf("code must be a 4-6 digit number")
	}

	// Codes must be unique among active users; inactive users hold no code.
	_, taken, err := s.userRepo.GetByCode(ctx, chosenCode)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", common.Conflictf("code is already in use")
	}

	user, found, err := s.userRepo.GetByInviteToken(ctx, inviteToken)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", common.NotFoundf("invite not found")
	}
	if user.InviteExpires == nil || time.Now().After(*user.InviteExpires) {
		return nil, "", common.Expiredf("invite has expired")
	}

	// Clearing the token is what makes activation single-use.
	updated, err := s.userRepo.SetAuthState(ctx, user.ID, &chosenCode, true, nil, nil)
	if err != nil {
		return nil, "", err
	}

	s.clearSessionRevocation(ctx, updated.ID)

	log.Printf("User %s activated", updated.ID)

	token, err := s.IssueToken(updated)
	if err != nil {
		return nil, "", err
	}
	return updated.Redacted(), token, nil
}

func (s *authService) ResetInvite(ctx context.Context, actor *models.User, userID uuid.UUID) (*models.User, error) {
	if err := s.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	inviteToken := random.String(inviteTokenLength)
	expires := time.Now().Add(inviteTTL)
	updated, err := s.userRepo.SetAuthState(ctx, userID, nil, false, &inviteToken, &expires)
	if err != nil {
		return nil, err
	}

	s.revokeSessions(ctx, userID)

	log.Printf("Invite reset for user %s", updated.ID)

	// The invite token is intentionally present here: the admin has to hand
	// it to the invitee. The login code is gone (nulled by the reset).
	return updated, nil
}

func sessionRevocationKey(userID uuid.UUID) string {
	return sessionRevocationPrefix + userID.String()
}

// revokeSessions stamps the user so that every session token issued up to now
// is dead. Without a cache there is nothing to stamp; the reset still kills
// access because Authenticate rejects inactive users.
func (s *authService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.cacheSvc.SetString(ctx, sessionRevocationKey(userID), stamp, sessionTTL); err != nil {
		log.Printf("WARN: failed to record session revocation for user %s: %v", userID, err)
	}
}

// clearSessionRevocation drops the revocation stamp once the user activates
// again, so the stale entry does not linger for a full session TTL.
func (s *authService) clearSessionRevocation(ctx context.Context, userID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.Delete(ctx, sessionRevocationKey(userID)); err != nil {
		log.Printf("WARN: failed to clear session revocation for user %s: %v", userID, err)
	}
}

func (s *authService) SessionRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) bool {
	if s.cacheSvc == nil {
		return false
	}
	stamp, err := s.cacheSvc.GetString(ctx, sessionRevocationKey(userID))
	if err != nil {
		// No stamp recorded, or the cache is unreachable: the token stands.
		return false
	}
	revokedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return false
	}
	return !issuedAt.After(revokedAt)
}

func (s *authService) RequireAdmin(user *models.User) error {
	if user == nil {
		return common.Unauthorizedf("missing credential")
	}
	if !user.IsAdmin {
		return common.Forbiddenf("admin privileges required")
	}
	return nil
}

func (s *authService) RequireOwnerOrAdmin(user *models.User, container *models.Container) error {
	if user == nil {
		return common.Unauthorizedf("missing credential")
	}
	if user.IsAdmin || user.ID == container.OwnerID {
		return nil
	}
	return common.Forbiddenf("only the container owner or an admin may do this")
}

// IssueToken signs a session JWT carrying the user id as subject.
func (s *authService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "crately",
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", common.Internalf(err, "failed to sign session token")
	}
	return signed, nil
}

// NewInvite builds the invite fields for a freshly created user.
func NewInvite() (string, time.Time) {
	return random.String(inviteTokenLength), time.Now().Add(inviteTTL)
}
