package graph

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Version: "1.0.0",
		Vertices: map[string]*schema.VertexLabel{
			"Person":  {Label: "Person", Properties: map[string]*schema.PropertyDefinition{"name": {Type: schema.TypeString}}},
			"Company": {Label: "Company", Properties: map[string]*schema.PropertyDefinition{"name": {Type: schema.TypeString}}},
		},
		Edges: map[string]*schema.EdgeLabel{
			"WORKS_AT": {VertexLabel: schema.VertexLabel{Label: "WORKS_AT"}, FromLabel: "Person", ToLabel: "Company"},
		},
	}
}

func newTestSession(t *testing.T) (*session.Session, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	cfg := session.DefaultConfig()
	cfg.Max = 1
	pool := session.NewWithDB(db, cfg)
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	return sess, mock, func() { db.Close() }
}

func TestCreateVertex_RejectsUnknownLabel(t *testing.T) {
	sess, _, cleanup := newTestSession(t)
	defer cleanup()

	store := New(sess, testSchema())
	_, err := store.CreateVertex(context.Background(), "my_graph", "Ghost", core.KVMap{"name": "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestCreateVertex_ExecutesAndDecodes(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"n"}).AddRow(`{"id": 1, "label": "Person", "properties": {"name": "Alice"}}::vertex`)
	mock.ExpectQuery("cypher").WillReturnRows(rows)

	store := New(sess, testSchema())
	v, err := store.CreateVertex(context.Background(), "my_graph", "Person", core.KVMap{"name": "Alice"})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestFindVertices_RejectsUnknownLabel(t *testing.T) {
	sess, _, cleanup := newTestSession(t)
	defer cleanup()

	store := New(sess, testSchema())
	_, err := store.FindVertices(context.Background(), "my_graph", "Ghost", nil)
	assert.Error(t, err)
}

func TestCreateEdge_RejectsUnknownLabel(t *testing.T) {
	sess, _, cleanup := newTestSession(t)
	defer cleanup()

	store := New(sess, testSchema())
	_, err := store.CreateEdge(context.Background(), "my_graph", "GHOST_EDGE", 1, 2, nil)
	assert.Error(t, err)
}

func TestCreateVertex_GeneratesIDWhenSchemaDeclaresItAndNoneSupplied(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	sch := testSchema()
	sch.Vertices["Person"].Properties["id"] = &schema.PropertyDefinition{Type: schema.TypeString}

	mock.ExpectQuery(`id: '[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}'`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(`{"id": 1, "label": "Person", "properties": {"name": "Alice"}}::vertex`))

	store := New(sess, sch)
	v, err := store.CreateVertex(context.Background(), "my_graph", "Person", core.KVMap{"name": "Alice"})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestCreateVertex_DoesNotOverrideSuppliedID(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	sch := testSchema()
	sch.Vertices["Person"].Properties["id"] = &schema.PropertyDefinition{Type: schema.TypeString}

	mock.ExpectQuery(`id: 'explicit-id'`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(`{"id": 1, "label": "Person", "properties": {"name": "Alice"}}::vertex`))

	store := New(sess, sch)
	_, err := store.CreateVertex(context.Background(), "my_graph", "Person", core.KVMap{"name": "Alice", "id": "explicit-id"})
	require.NoError(t, err)
}

func TestCreateEdge_UsesDeclaredEndpointLabels(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"r"}).AddRow(`{"id": 1, "label": "WORKS_AT", "start_id": 1, "end_id": 2, "properties": {}}::edge`)
	mock.ExpectQuery(`MATCH \(a:Person \{id: 1\}\)\s+MATCH \(b:Company \{id: 2\}\)`).WillReturnRows(rows)

	store := New(sess, testSchema())
	e, err := store.CreateEdge(context.Background(), "my_graph", "WORKS_AT", 1, 2, core.KVMap{"role": "engineer"})
	require.NoError(t, err)
	assert.NotNil(t, e)
}
