package executor

import (
	"encoding/json"
	"strconv"
	"time"

	ag "github.com/bitnine-oss/agensgraph-golang"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/core"
)

// decodeDynamic is the single, centralised decoder for AGE's agtype-as-text
// encoding (spec.md §4.7, §9: "the decoder must be centralised; scattering
// JSON.parse throughout breaks P7"). It recognises, in order: NULL,
// true/false, a quoted JSON string (returned as a UTC time.Time when it holds
// an ISO-8601 date/datetime), strict numeric syntax, a JSON object or array,
// falling back to the raw text.
func decodeDynamic(raw []byte) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	text := string(raw)
	if text == "" {
		return nil, nil
	}

	switch text {
	case "null", "NULL":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			if t, ok := parseISO8601(s); ok {
				return t, nil
			}
			return s, nil
		}
	}

	if n, ok := parseStrictNumber(text); ok {
		return n, nil
	}

	if len(text) > 0 && (text[0] == '{' || text[0] == '[') {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	return text, nil
}

func parseStrictNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		if r == '.' || r == 'e' || r == 'E' || r == '-' || r == '+' {
			continue
		}
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseISO8601(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DecodeVertex converts a core.Row column holding an AGE vertex into a
// core.Vertex, grounded on agensgraph/executor.go's agVertexToVertex.
func DecodeVertex(row core.Row, column string) (*core.Vertex, error) {
	raw, ok := row[column]
	if !ok {
		return nil, ageerr.New(ageerr.QueryError, "column "+column+" not present in result row")
	}
	var agVertex ag.BasicVertex
	if err := ag.ScanEntity(raw, &agVertex); err != nil {
		return nil, ageerr.Wrap(ageerr.QueryError, "decode vertex", err)
	}
	v := &core.Vertex{
		ID:         core.NewId(agVertex.Id.String()),
		Labels:     []string{agVertex.Label},
		Properties: core.KVMap{},
	}
	for k, val := range agVertex.Properties {
		v.Properties[k] = val
	}
	return v, nil
}

// DecodeEdge converts a core.Row column holding an AGE edge into a core.Edge,
// grounded on agensgraph/executor.go's agEdgeToEdge.
func DecodeEdge(row core.Row, column string) (*core.Edge, error) {
	raw, ok := row[column]
	if !ok {
		return nil, ageerr.New(ageerr.QueryError, "column "+column+" not present in result row")
	}
	var agEdge ag.BasicEdge
	if err := ag.ScanEntity(raw, &agEdge); err != nil {
		return nil, ageerr.Wrap(ageerr.QueryError, "decode edge", err)
	}
	e := &core.Edge{
		ID:                  core.NewId(agEdge.Id.String()),
		Type:                agEdge.Label,
		SourceVertexID:      core.NewId(agEdge.Start.String()),
		DestinationVertexID: core.NewId(agEdge.End.String()),
		Properties:          core.KVMap{},
	}
	for k, val := range agEdge.Properties {
		e.Properties[k] = val
	}
	return e, nil
}
