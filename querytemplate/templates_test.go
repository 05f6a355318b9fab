package querytemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexCreateTemplate(t *testing.T) {
	q, err := VertexCreateTemplate("Person", []string{"name", "age"})
	require.NoError(t, err)
	assert.Equal(t, "UNWIND get_vertices('Person') AS v\n"+
		"CREATE (n:Person {age: CASE WHEN v.age IS NOT NULL THEN v.age ELSE NULL END, name: CASE WHEN v.name IS NOT NULL THEN v.name ELSE NULL END})\n"+
		"RETURN count(n) AS created_vertices", q)
}

func TestVertexCreateTemplate_RejectsBadLabel(t *testing.T) {
	_, err := VertexCreateTemplate("Person'; DROP TABLE x; --", nil)
	require.Error(t, err)
	var identErr *IdentError
	require.ErrorAs(t, err, &identErr)
}

func TestEdgeCreateTemplate(t *testing.T) {
	q, err := EdgeCreateTemplate("WORKS_AT", "Person", "Company", []string{"since"})
	require.NoError(t, err)
	assert.Equal(t, "UNWIND get_edges('WORKS_AT') AS e\n"+
		"MATCH (a:Person {id: e.from})\n"+
		"MATCH (b:Company {id: e.to})\n"+
		"CREATE (a)-[r:WORKS_AT {since: CASE WHEN e.since IS NOT NULL THEN e.since ELSE NULL END}]->(b)\n"+
		"RETURN count(r) AS created_edges", q)
}

func TestScalarParamsTemplate(t *testing.T) {
	q, err := ScalarParamsTemplate("request", "params", "RETURN params.name")
	require.NoError(t, err)
	assert.Equal(t, "WITH get_age_param('request') AS params\nRETURN params.name", q)
}
