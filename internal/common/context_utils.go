package common

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	// UserKey carries the resolved *models.User for the request. Stored as
	// any to avoid an import cycle; middleware and handlers agree on the type.
	UserKey contextKey = "user"
)

// ErrorResponse is the standardized error envelope every handler returns.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds the standard error envelope.
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// RespondError translates a service error into the transport status code and
// envelope. Internal errors get a generic message so store details never leak.
func RespondError(c echo.Context, err error) error {
	kind := KindOf(err)
	status := HTTPStatus(err)
	message := err.Error()
	if kind == KindInternal {
		message = "operation could not be completed"
	}
	return c.JSON(status, CreateErrorResponse(string(kind), message, nil))
}

// SendValidationError sends a field-level validation error response.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{field: message}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(string(KindValidation), "Validation failed", details))
}

// ValidateUUID validates and parses a path or body id parameter.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, Validationf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, Validationf("%s is not a valid id", fieldName)
	}
	return id, nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return Validationf("%s is required", fieldName)
	}
	return nil
}

// WithUser stores the authenticated user in the request context.
func WithUser(ctx context.Context, user any) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext extracts the authenticated user stored by the auth
// middleware. The caller asserts the concrete type.
func UserFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(UserKey)
	return v, v != nil
}
