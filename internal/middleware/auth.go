package middleware

import (
	"context"
	"net/http"
	"time"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Authentication runs after the echo-jwt middleware has verified the token
// signature. It resolves the token subject to an active user through the
// auth gate and stores the full user in the request context, so handlers
// never re-fetch the actor.
func Authentication(authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			user, err := authSvc.Authenticate(c.Request().Context(), userID)
			if err != nil {
				return common.RespondError(c, err)
			}

			// Tokens issued before the user's last invite reset are dead even
			// though their signature still verifies.
			issuedAt := time.Time{}
			if iat, iatErr := token.Claims.GetIssuedAt(); iatErr == nil && iat != nil {
				issuedAt = iat.Time
			}
			if authSvc.SessionRevoked(c.Request().Context(), userID, issuedAt) {
				return common.RespondError(c, common.Unauthorizedf("session has been revoked"))
			}

			ctx := common.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ActorFromContext extracts the authenticated user placed by Authentication.
func ActorFromContext(ctx context.Context) (*models.User, bool) {
	v, ok := common.UserFromContext(ctx)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// Actor is the handler-side accessor; a missing actor means the middleware
// chain was misconfigured, reported as Unauthorized.
func Actor(c echo.Context) (*models.User, error) {
	user, ok := ActorFromContext(c.Request().Context())
	if !ok {
		return nil, common.Unauthorizedf("missing credential")
	}
	return user, nil
}
