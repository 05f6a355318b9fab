package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personCompanySchema() *Schema {
	return &Schema{
		Version: "1.0.0",
		Vertices: map[string]*VertexLabel{
			"Person": {
				Label: "Person",
				Properties: map[string]*PropertyDefinition{
					"id":   {Type: TypeString},
					"name": {Type: TypeString},
					"age":  {Type: TypeInteger},
				},
				Required: []string{"id", "name"},
			},
			"Company": {
				Label: "Company",
				Properties: map[string]*PropertyDefinition{
					"id":      {Type: TypeString},
					"name":    {Type: TypeString},
					"founded": {Type: TypeInteger},
				},
				Required: []string{"id", "name"},
			},
		},
		Edges: map[string]*EdgeLabel{
			"WORKS_AT": {
				VertexLabel: VertexLabel{
					Label: "WORKS_AT",
					Properties: map[string]*PropertyDefinition{
						"since":    {Type: TypeInteger},
						"position": {Type: TypeString},
					},
				},
				FromLabel: "Person",
				ToLabel:   "Company",
			},
		},
	}
}

func TestValidate_MissingRequiredProperty(t *testing.T) {
	sch := personCompanySchema()
	data := &GraphData{
		Vertices: map[string][]map[string]interface{}{
			"Person": {{"id": "1"}},
		},
	}
	res := Validate(data, sch, DefaultOptions())
	require.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "Missing required property: name")
}

func TestValidate_HappyPath(t *testing.T) {
	sch := personCompanySchema()
	data := &GraphData{
		Vertices: map[string][]map[string]interface{}{
			"Person":  {{"id": "1", "name": "Alice", "age": 30}, {"id": "2", "name": "Bob", "age": 25}},
			"Company": {{"id": "3", "name": "Acme Inc.", "founded": 1990}},
		},
		Edges: map[string][]EdgeRecord{
			"WORKS_AT": {
				{From: "1", To: "3", Properties: map[string]interface{}{"since": 2015, "position": "Manager"}},
			},
		},
	}
	res := Validate(data, sch, DefaultOptions())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_ReferentialIntegrity(t *testing.T) {
	sch := personCompanySchema()
	data := &GraphData{
		Vertices: map[string][]map[string]interface{}{
			"Person": {{"id": "1", "name": "Alice"}},
		},
		Edges: map[string][]EdgeRecord{
			"WORKS_AT": {{From: "1", To: "missing", Properties: map[string]interface{}{}}},
		},
	}
	res := Validate(data, sch, DefaultOptions())
	require.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if e.Path == "edges.WORKS_AT[0].to" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CollectAllVsFailFast(t *testing.T) {
	sch := personCompanySchema()
	data := &GraphData{
		Vertices: map[string][]map[string]interface{}{
			"Person": {{"id": "1"}, {"id": "2"}},
		},
	}
	collectAll := Validate(data, sch, Options{FailFast: false, CheckReferentialIntegrity: true})
	assert.Len(t, collectAll.Errors, 2)

	failFast := Validate(data, sch, Options{FailFast: true, CheckReferentialIntegrity: true})
	assert.Len(t, failFast.Errors, 1)
}

func TestCompare_Inversion(t *testing.T) {
	a := personCompanySchema()
	b := personCompanySchema()
	b.Vertices["Person"].Properties["email"] = &PropertyDefinition{Type: TypeString, Nullable: true}

	forward := Compare(a, b)
	require.Len(t, forward, 1)
	assert.Equal(t, Added, forward[0].Kind)
	assert.Equal(t, "vertices.Person.email", forward[0].Path)

	backward := Compare(b, a)
	require.Len(t, backward, 1)
	assert.Equal(t, Removed, backward[0].Kind)
}
