package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// document is the on-disk JSON shape (spec.md §6): version, vertices, edges,
// metadata. It is kept separate from Schema so json struct tags don't leak
// into the in-memory model used throughout the rest of the library.
type document struct {
	Version  string                  `json:"version"`
	Vertices map[string]*VertexLabel `json:"vertices"`
	Edges    map[string]*EdgeLabel   `json:"edges"`
	Metadata map[string]interface{}  `json:"metadata"`
}

// Parse decodes a schema document from JSON bytes, validating the version
// string and the fromLabel/toLabel referential invariant.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Version != "" && !versionPattern.MatchString(doc.Version) {
		return nil, fmt.Errorf("parse schema: invalid version %q, expected major.minor.patch[-prerelease]", doc.Version)
	}
	s := &Schema{Version: doc.Version, Vertices: doc.Vertices, Edges: doc.Edges, Metadata: doc.Metadata}
	if s.Vertices == nil {
		s.Vertices = map[string]*VertexLabel{}
	}
	if s.Edges == nil {
		s.Edges = map[string]*EdgeLabel{}
	}
	for name, v := range s.Vertices {
		v.Label = name
	}
	for name, e := range s.Edges {
		e.Label = name
	}
	if errs := s.CheckReferentialIntegrity(); len(errs) > 0 {
		return nil, fmt.Errorf("parse schema: %w", errs[0])
	}
	return s, nil
}

// Load reads and parses a schema document from r.
func Load(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return Parse(data)
}
