package store

import (
	"context"
	"encoding/json"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	store   Store
	context context.Context
}

func (suite *PostgresStoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.store = NewPostgresStore(mock)
	suite.context = context.Background()
}

func (suite *PostgresStoreTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPostgresStoreTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreTestSuite))
}

func (suite *PostgresStoreTestSuite) TestInsert() {
	doc := &testDoc{ID: "a", Name: "first", Count: 3}
	docJSON, _ := json.Marshal(doc)

	suite.mock.ExpectExec(`INSERT INTO records \(kind, id, doc\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs("docs", "a", docJSON).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.store.Insert(suite.context, "docs", "a", doc))
}

func (suite *PostgresStoreTestSuite) TestFindOne_Found() {
	filterJSON, _ := json.Marshal(Filter{"id": "a"})
	raw := []byte(`{"id":"a","name":"first","count":3}`)

	suite.mock.ExpectQuery(`SELECT doc FROM records`).
		WithArgs("docs", filterJSON).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(raw))

	var got testDoc
	found, err := suite.store.FindOne(suite.context, "docs", Filter{"id": "a"}, &got)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), found)
	assert.Equal(suite.T(), "first", got.Name)
}

func (suite *PostgresStoreTestSuite) TestFindOne_NoRows() {
	filterJSON, _ := json.Marshal(Filter{"id": "missing"})

	suite.mock.ExpectQuery(`SELECT doc FROM records`).
		WithArgs("docs", filterJSON).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	var got testDoc
	found, err := suite.store.FindOne(suite.context, "docs", Filter{"id": "missing"}, &got)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), found)
}

func (suite *PostgresStoreTestSuite) TestFindMany() {
	filterJSON, _ := json.Marshal(Filter{})

	suite.mock.ExpectQuery(`SELECT doc FROM records`).
		WithArgs("docs", filterJSON).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"a","name":"first","count":1}`)).
			AddRow([]byte(`{"id":"b","name":"second","count":2}`)))

	var docs []*testDoc
	assert.NoError(suite.T(), suite.store.FindMany(suite.context, "docs", nil, &docs))
	assert.Len(suite.T(), docs, 2)
	assert.Equal(suite.T(), "a", docs[0].ID)
	assert.Equal(suite.T(), "b", docs[1].ID)
}

func (suite *PostgresStoreTestSuite) TestUpdate_MergesPartial() {
	partialJSON, _ := json.Marshal(map[string]any{"count": 7})

	suite.mock.ExpectExec(`UPDATE records SET doc = doc \|\| \$3::jsonb`).
		WithArgs("docs", "a", partialJSON).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.store.Update(suite.context, "docs", "a", map[string]any{"count": 7}))
}

func (suite *PostgresStoreTestSuite) TestUpdate_MissingRecord() {
	partialJSON, _ := json.Marshal(map[string]any{"count": 7})

	suite.mock.ExpectExec(`UPDATE records SET doc = doc \|\| \$3::jsonb`).
		WithArgs("docs", "nope", partialJSON).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.store.Update(suite.context, "docs", "nope", map[string]any{"count": 7})
	assert.ErrorIs(suite.T(), err, ErrNoRecord)
}

func (suite *PostgresStoreTestSuite) TestDeleteMany() {
	filterJSON, _ := json.Marshal(Filter{"name": "x"})

	suite.mock.ExpectExec(`DELETE FROM records WHERE kind = \$1 AND doc @> \$2::jsonb`).
		WithArgs("docs", filterJSON).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	assert.NoError(suite.T(), suite.store.DeleteMany(suite.context, "docs", Filter{"name": "x"}))
}

func (suite *PostgresStoreTestSuite) TestCount() {
	filterJSON, _ := json.Marshal(Filter{})

	suite.mock.ExpectQuery(`SELECT count\(\*\) FROM records`).
		WithArgs("docs", filterJSON).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	count, err := suite.store.Count(suite.context, "docs", nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(5), count)
}

func (suite *PostgresStoreTestSuite) TestEnsureSchema() {
	suite.mock.ExpectExec(`CREATE TABLE IF NOT EXISTS records`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(suite.T(), EnsureSchema(suite.context, suite.mock))
}
