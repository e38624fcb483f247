package services

import (
	"context"
	"testing"

	"crately/internal/common"
	"crately/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ShareServiceTestSuite struct {
	suite.Suite
	env       *testEnv
	context   context.Context
	admin     *models.User
	alice     *models.User
	bob       *models.User
	container *models.Container
}

func (suite *ShareServiceTestSuite) SetupTest() {
	suite.env = newTestEnv()
	suite.context = context.Background()
	suite.admin = suite.env.addUser(suite.T(), "admin", "0000", true)
	suite.alice = suite.env.addUser(suite.T(), "alice", "1234", false)
	suite.bob = suite.env.addUser(suite.T(), "bob", "5678", false)
	suite.container = suite.env.addContainer(suite.T(), "garage", suite.alice.ID, nil)
}

func TestShareServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShareServiceTestSuite))
}

func (suite *ShareServiceTestSuite) TestGrant_ByOwner() {
	grant, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.container.ID, grant.ContainerID)
	assert.Equal(suite.T(), suite.bob.ID, grant.UserID)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, suite.bob.ID)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), visible, suite.container.ID)
}

func (suite *ShareServiceTestSuite) TestGrant_ByAdmin() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.admin, suite.container.ID, suite.bob.ID)
	assert.NoError(suite.T(), err)
}

func (suite *ShareServiceTestSuite) TestGrant_NonOwnerForbidden() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.bob, suite.container.ID, suite.bob.ID)
	assert.Equal(suite.T(), common.KindForbidden, common.KindOf(err))
}

func (suite *ShareServiceTestSuite) TestGrant_DuplicateConflict() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.NoError(suite.T(), err)

	_, err = suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.Equal(suite.T(), common.KindConflict, common.KindOf(err))
}

func (suite *ShareServiceTestSuite) TestGrant_ToOwnerConflict() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.alice.ID)
	assert.Equal(suite.T(), common.KindConflict, common.KindOf(err))
}

func (suite *ShareServiceTestSuite) TestGrant_UnknownUserOrContainer() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, uuid.New())
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))

	_, err = suite.env.shareSvc.Grant(suite.context, suite.alice, uuid.New(), suite.bob.ID)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *ShareServiceTestSuite) TestRevoke() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.env.shareSvc.Revoke(suite.context, suite.alice, suite.container.ID, suite.bob.ID))

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, suite.bob.ID)
	assert.NoError(suite.T(), err)
	assert.NotContains(suite.T(), visible, suite.container.ID)
}

func (suite *ShareServiceTestSuite) TestRevoke_MissingGrantNotFound() {
	err := suite.env.shareSvc.Revoke(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *ShareServiceTestSuite) TestListForContainer_OwnerOrAdminOnly() {
	_, err := suite.env.shareSvc.Grant(suite.context, suite.alice, suite.container.ID, suite.bob.ID)
	assert.NoError(suite.T(), err)

	grants, err := suite.env.shareSvc.ListForContainer(suite.context, suite.alice, suite.container.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), grants, 1)

	// Even the grantee may not inspect the grant list.
	_, err = suite.env.shareSvc.ListForContainer(suite.context, suite.bob, suite.container.ID)
	assert.Equal(suite.T(), common.KindForbidden, common.KindOf(err))
}
