// Package param implements the Parameter Bridge (spec.md §4.3): the
// session-scoped scratch table that lets complex values reach a Cypher query
// body through the get_age_param/get_vertices/get_edges helper functions
// bootstrapped by the session package.
//
// Grounded on agensgraph/executor.go's ExecuteQuery, which already prepends
// session-scoped SQL ("set graph_path=...") ahead of the user's query; the
// bridge generalizes that same prelude-then-query shape into an upsert.
package param

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Bridge writes values into one session's age_params table.
type Bridge struct {
	sess *session.Session
}

// New wraps sess for parameter writes.
func New(sess *session.Session) *Bridge {
	return &Bridge{sess: sess}
}

// ValidateKey enforces spec.md §4.3(c): keys must match
// [A-Za-z_][A-Za-z0-9_]* to avoid injection in the generated query body.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return ageerr.New(ageerr.QueryError, fmt.Sprintf("invalid parameter key %q: must match [A-Za-z_][A-Za-z0-9_]*", key))
	}
	return nil
}

// Set serializes value to JSON and upserts (key, value) into age_params.
// Writes of the same key within a session overwrite (last-writer-wins, spec.md
// §4.3).
func (b *Bridge) Set(ctx context.Context, key string, value interface{}) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ageerr.Wrap(ageerr.QueryError, "marshal parameter value", err)
	}
	_, err = b.sess.Querier().ExecContext(ctx, upsertSQL, key, string(data))
	if err != nil {
		return ageerr.Wrap(ageerr.QueryError, fmt.Sprintf("write parameter %q", key), err)
	}
	return nil
}

// SetAll writes every entry of values in a single round trip (spec.md §4.3).
func (b *Bridge) SetAll(ctx context.Context, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if err := ValidateKey(k); err != nil {
			return err
		}
		keys = append(keys, k)
	}

	query, args, err := buildBulkUpsert(keys, values)
	if err != nil {
		return ageerr.Wrap(ageerr.QueryError, "marshal bulk parameters", err)
	}
	if _, err := b.sess.Querier().ExecContext(ctx, query, args...); err != nil {
		return ageerr.Wrap(ageerr.QueryError, "bulk write parameters", err)
	}
	return nil
}

// SetVertexChunk stores a chunk of vertex rows for label under the
// vertex_<label> key the get_vertices() helper reads (spec.md §4.5).
func (b *Bridge) SetVertexChunk(ctx context.Context, label string, rows []map[string]interface{}) error {
	return b.Set(ctx, "vertex_"+label, rows)
}

// SetEdgeChunk stores a chunk of edge rows for label under the edge_<label>
// key the get_edges() helper reads (spec.md §4.5).
func (b *Bridge) SetEdgeChunk(ctx context.Context, label string, rows []map[string]interface{}) error {
	return b.Set(ctx, "edge_"+label, rows)
}

const upsertSQL = `INSERT INTO age_params (key, value) VALUES ($1, $2::json)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

func buildBulkUpsert(keys []string, values map[string]interface{}) (string, []interface{}, error) {
	query := `INSERT INTO age_params (key, value) VALUES `
	args := make([]interface{}, 0, len(keys)*2)
	for i, k := range keys {
		data, err := json.Marshal(values[k])
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d::json)", i*2+1, i*2+2)
		args = append(args, k, string(data))
	}
	query += ` ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	return query, args, nil
}
