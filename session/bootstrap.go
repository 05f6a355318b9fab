package session

import "fmt"

// Bootstrap SQL is order-sensitive (spec.md §6): extension load, search path,
// scratch table, then the four helper functions. Every statement is written
// to tolerate re-execution against an already-bootstrapped connection
// (spec.md §6: "the library MUST treat CREATE IF NOT EXISTS failures as
// informational").
const (
	sqlLoadExtension = `CREATE EXTENSION IF NOT EXISTS age`

	sqlSetSearchPathFmt = `SET search_path = %s, "$user", public`

	sqlCreateScratchTable = `CREATE TABLE IF NOT EXISTS age_params (
		key TEXT PRIMARY KEY,
		value JSON
	)`

	sqlTruncateScratchTable = `TRUNCATE age_params`

	sqlCreateGetAgeParam = `CREATE OR REPLACE FUNCTION get_age_param(param_key TEXT)
		RETURNS agtype AS $$
		DECLARE
			result JSON;
		BEGIN
			SELECT value INTO result FROM age_params WHERE key = param_key;
			IF result IS NULL THEN
				RETURN 'null'::agtype;
			END IF;
			RETURN result::text::agtype;
		END;
		$$ LANGUAGE plpgsql STABLE`

	sqlCreateGetAllAgeParams = `CREATE OR REPLACE FUNCTION get_all_age_params()
		RETURNS agtype AS $$
		DECLARE
			result JSON;
		BEGIN
			SELECT json_object_agg(key, value) INTO result FROM age_params;
			IF result IS NULL THEN
				RETURN '{}'::agtype;
			END IF;
			RETURN result::text::agtype;
		END;
		$$ LANGUAGE plpgsql STABLE`

	sqlCreateGetVertices = `CREATE OR REPLACE FUNCTION get_vertices(param_key TEXT)
		RETURNS agtype AS $$
		DECLARE
			result JSON;
		BEGIN
			SELECT value INTO result FROM age_params WHERE key = 'vertex_' || param_key;
			IF result IS NULL THEN
				RETURN '[]'::agtype;
			END IF;
			RETURN result::text::agtype;
		END;
		$$ LANGUAGE plpgsql STABLE`

	sqlCreateGetEdges = `CREATE OR REPLACE FUNCTION get_edges(param_key TEXT)
		RETURNS agtype AS $$
		DECLARE
			result JSON;
		BEGIN
			SELECT value INTO result FROM age_params WHERE key = 'edge_' || param_key;
			IF result IS NULL THEN
				RETURN '[]'::agtype;
			END IF;
			RETURN result::text::agtype;
		END;
		$$ LANGUAGE plpgsql STABLE`
)

// bootstrapStatements is the ordered list executed once per freshly acquired
// session (spec.md §4.2). searchPath plugs in Config.SearchPath (spec.md
// §4.2 lists searchPath as a configurable pool option).
func bootstrapStatements(searchPath string) []string {
	return []string{
		sqlLoadExtension,
		fmt.Sprintf(sqlSetSearchPathFmt, searchPath),
		sqlCreateScratchTable,
		sqlCreateGetAgeParam,
		sqlCreateGetAllAgeParams,
		sqlCreateGetVertices,
		sqlCreateGetEdges,
	}
}
