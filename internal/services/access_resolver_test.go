package services

import (
	"context"
	"testing"

	"crately/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AccessResolverTestSuite struct {
	suite.Suite
	env     *testEnv
	context context.Context
}

func (suite *AccessResolverTestSuite) SetupTest() {
	suite.env = newTestEnv()
	suite.context = context.Background()
}

func TestAccessResolverTestSuite(t *testing.T) {
	suite.Run(t, new(AccessResolverTestSuite))
}

func (suite *AccessResolverTestSuite) TestOwnedContainersAndDescendants() {
	owner := suite.env.addUser(suite.T(), "alice", "1234", false)
	root := suite.env.addContainer(suite.T(), "garage", owner.ID, nil)
	shelf := suite.env.addContainer(suite.T(), "shelf", owner.ID, uuidPtr(root.ID))
	box := suite.env.addContainer(suite.T(), "box", owner.ID, uuidPtr(shelf.ID))

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, owner.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), visible, 3)
	assert.Contains(suite.T(), visible, root.ID)
	assert.Contains(suite.T(), visible, shelf.ID)
	assert.Contains(suite.T(), visible, box.ID)
}

func (suite *AccessResolverTestSuite) TestGrantExtendsToDescendants() {
	admin := suite.env.addUser(suite.T(), "admin", "0000", true)
	bob := suite.env.addUser(suite.T(), "bob", "1234", false)

	c1 := suite.env.addContainer(suite.T(), "c1", admin.ID, nil)
	c2 := suite.env.addContainer(suite.T(), "c2", admin.ID, uuidPtr(c1.ID))
	other := suite.env.addContainer(suite.T(), "other", admin.ID, nil)

	suite.env.addGrant(suite.T(), c1.ID, bob.ID)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), visible, 2)
	assert.Contains(suite.T(), visible, c1.ID)
	assert.Contains(suite.T(), visible, c2.ID)
	assert.NotContains(suite.T(), visible, other.ID)
}

func (suite *AccessResolverTestSuite) TestGrantOnNestedContainerDoesNotClimb() {
	owner := suite.env.addUser(suite.T(), "alice", "1234", false)
	bob := suite.env.addUser(suite.T(), "bob", "5678", false)

	root := suite.env.addContainer(suite.T(), "garage", owner.ID, nil)
	shelf := suite.env.addContainer(suite.T(), "shelf", owner.ID, uuidPtr(root.ID))
	box := suite.env.addContainer(suite.T(), "box", owner.ID, uuidPtr(shelf.ID))

	suite.env.addGrant(suite.T(), shelf.ID, bob.ID)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), visible, 2)
	assert.Contains(suite.T(), visible, shelf.ID)
	assert.Contains(suite.T(), visible, box.ID)
	assert.NotContains(suite.T(), visible, root.ID)
}

func (suite *AccessResolverTestSuite) TestNoAccessYieldsEmptySet() {
	owner := suite.env.addUser(suite.T(), "alice", "1234", false)
	stranger := suite.env.addUser(suite.T(), "bob", "5678", false)
	suite.env.addContainer(suite.T(), "garage", owner.ID, nil)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, stranger.ID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), visible)
}

func (suite *AccessResolverTestSuite) TestOrphanedGrantIsSkipped() {
	bob := suite.env.addUser(suite.T(), "bob", "1234", false)
	// Grant pointing at a container that was deleted before the cascade ran.
	suite.env.addGrant(suite.T(), uuid.New(), bob.ID)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, bob.ID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), visible)
}

func (suite *AccessResolverTestSuite) TestTerminatesOnCorruptedCyclicGraph() {
	owner := suite.env.addUser(suite.T(), "alice", "1234", false)
	a := suite.env.addContainer(suite.T(), "a", owner.ID, nil)
	b := suite.env.addContainer(suite.T(), "b", owner.ID, uuidPtr(a.ID))

	// Corrupt the graph behind the service layer's back: a -> b -> a.
	err := suite.env.db.Update(suite.context, store.KindContainers, a.ID.String(),
		map[string]any{"parent_id": b.ID})
	assert.NoError(suite.T(), err)

	visible, err := suite.env.resolver.AccessibleContainers(suite.context, owner.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), visible, 2)
	assert.Contains(suite.T(), visible, a.ID)
	assert.Contains(suite.T(), visible, b.ID)
}
