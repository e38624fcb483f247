package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crately/internal/models"
	"crately/internal/repositories"
	"crately/internal/services"
	"crately/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthHandlersTestSuite struct {
	suite.Suite
	echo     *echo.Echo
	userRepo repositories.UserRepository
	handlers *AuthHandlers
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	db := store.NewMemoryStore()
	suite.echo = echo.New()
	suite.userRepo = repositories.NewUserRepo(db)
	authSvc := services.NewAuthService(suite.userRepo, nil, "test-secret")
	suite.handlers = NewAuthHandlers(authSvc)
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

func (suite *AuthHandlersTestSuite) postJSON(path, body string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := suite.echo.NewContext(req, rec)
	assert.NoError(suite.T(), handler(c))
	return rec
}

func (suite *AuthHandlersTestSuite) addActiveUser(name, code string) *models.User {
	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Code:      code,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(suite.T(), suite.userRepo.Create(context.Background(), user))
	return user
}

func (suite *AuthHandlersTestSuite) TestLogin_Success() {
	suite.addActiveUser("alice", "1234")

	rec := suite.postJSON("/api/login", `{"code":"1234"}`, suite.handlers.Login)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp TokenResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(suite.T(), resp.Token)
	assert.NotContains(suite.T(), rec.Body.String(), "1234", "code must not leak into the response")
}

func (suite *AuthHandlersTestSuite) TestLogin_WrongCode() {
	suite.addActiveUser("alice", "1234")

	rec := suite.postJSON("/api/login", `{"code":"9999"}`, suite.handlers.Login)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestLogin_EmptyCode() {
	rec := suite.postJSON("/api/login", `{"code":""}`, suite.handlers.Login)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestActivate_FullFlow() {
	expires := time.Now().Add(time.Hour)
	invited := &models.User{
		ID:            uuid.New(),
		Name:          "carol",
		IsActive:      false,
		InviteToken:   "tok-carol",
		InviteExpires: &expires,
		CreatedAt:     time.Now().UTC(),
	}
	assert.NoError(suite.T(), suite.userRepo.Create(context.Background(), invited))

	rec := suite.postJSON("/api/activate", `{"token":"tok-carol","code":"4321"}`, suite.handlers.Activate)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	// Replaying the same invite fails.
	rec = suite.postJSON("/api/activate", `{"token":"tok-carol","code":"8765"}`, suite.handlers.Activate)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestActivate_ExpiredInviteIsGone() {
	expires := time.Now().Add(-time.Hour)
	invited := &models.User{
		ID:            uuid.New(),
		Name:          "carol",
		IsActive:      false,
		InviteToken:   "tok-carol",
		InviteExpires: &expires,
		CreatedAt:     time.Now().UTC(),
	}
	assert.NoError(suite.T(), suite.userRepo.Create(context.Background(), invited))

	rec := suite.postJSON("/api/activate", `{"token":"tok-carol","code":"4321"}`, suite.handlers.Activate)
	assert.Equal(suite.T(), http.StatusGone, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestActivate_MissingToken() {
	rec := suite.postJSON("/api/activate", `{"code":"4321"}`, suite.handlers.Activate)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}
