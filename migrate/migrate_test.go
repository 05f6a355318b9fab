package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
)

func sampleSchema() *schema.Schema {
	return &schema.Schema{
		Version: "1.0.0",
		Vertices: map[string]*schema.VertexLabel{
			"Person": {
				Label: "Person",
				Properties: map[string]*schema.PropertyDefinition{
					"name": {Type: schema.TypeString},
					"age":  {Type: schema.TypeInteger, Nullable: true},
				},
				Required: []string{"name"},
			},
		},
		Edges: map[string]*schema.EdgeLabel{
			"KNOWS": {
				VertexLabel: schema.VertexLabel{Label: "KNOWS"},
				FromLabel:   "Person",
				ToLabel:     "Person",
			},
		},
	}
}

func TestGenerateCreateTableSQL(t *testing.T) {
	stmts := GenerateCreateTableSQL(sampleSchema())
	assert.Len(t, stmts, 2)
	assert.True(t, strings.Contains(stmts[0], `CREATE TABLE IF NOT EXISTS "Person"`))
	assert.True(t, strings.Contains(stmts[0], `"name" TEXT NOT NULL`))
	assert.True(t, strings.Contains(stmts[0], `"age" INTEGER`))
	assert.True(t, strings.Contains(stmts[1], `CREATE TABLE IF NOT EXISTS "KNOWS"`))
	assert.True(t, strings.Contains(stmts[1], `REFERENCES "Person"(id)`))
}

func TestGenerateMigrationSQL_AddedRemovedProperty(t *testing.T) {
	old := sampleSchema()
	newSchema := sampleSchema()
	newSchema.Vertices["Person"].Properties["email"] = &schema.PropertyDefinition{Type: schema.TypeString, Nullable: true}
	delete(newSchema.Vertices["Person"].Properties, "age")

	changes := schema.Compare(old, newSchema)
	stmts := GenerateMigrationSQL(changes, newSchema)

	var addedEmail, droppedAge bool
	for _, s := range stmts {
		if strings.Contains(s, `ADD COLUMN "email"`) {
			addedEmail = true
		}
		if strings.Contains(s, `DROP COLUMN "age"`) {
			droppedAge = true
		}
	}
	assert.True(t, addedEmail)
	assert.True(t, droppedAge)
}

func TestGenerateMigrationSQL_AddedLabel(t *testing.T) {
	old := &schema.Schema{Vertices: map[string]*schema.VertexLabel{}, Edges: map[string]*schema.EdgeLabel{}}
	newSchema := sampleSchema()

	changes := schema.Compare(old, newSchema)
	stmts := GenerateMigrationSQL(changes, newSchema)

	var createdPerson bool
	for _, s := range stmts {
		if strings.Contains(s, `CREATE TABLE IF NOT EXISTS "Person"`) {
			createdPerson = true
		}
	}
	assert.True(t, createdPerson)
}
