package session

import (
	"errors"

	"github.com/lib/pq"
)

// idempotentBootstrapCodes are the Postgres SQLSTATEs a guarded bootstrap
// statement (CREATE EXTENSION/TABLE/FUNCTION IF NOT EXISTS or OR REPLACE) can
// still raise under a race with another session's concurrent bootstrap, even
// though the guard clause is meant to make it a no-op. spec.md §6 requires
// these be treated as informational rather than surfaced to the caller.
var idempotentBootstrapCodes = map[string]bool{
	"42710": true, // duplicate_object (CREATE EXTENSION IF NOT EXISTS race)
	"42P07": true, // duplicate_table
	"42723": true, // duplicate_function
	"42P06": true, // duplicate_schema
}

// isIdempotentBootstrapFailure reports whether err is one of the tolerable
// "already exists" races above, as opposed to a genuine hard failure (the age
// extension not being installed on the server, a permissions error, a
// connection drop mid-statement, etc.).
func isIdempotentBootstrapFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return idempotentBootstrapCodes[string(pqErr.Code)]
	}
	return false
}
