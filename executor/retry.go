package executor

import (
	"strings"

	"github.com/lib/pq"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
)

// isTransient classifies a driver error as retryable: connection resets and
// serialization failures, per spec.md §4.7/§7. Deterministic failures
// (syntax, constraint violations) are never retried.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code.Class() {
		case "40": // transaction rollback (includes serialization_failure)
			return true
		case "08": // connection exception
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, transientSignal := range []string{"connection reset", "broken pipe", "connection refused", "eof", "i/o timeout"} {
		if strings.Contains(msg, transientSignal) {
			return true
		}
	}
	return false
}

// classify wraps a terminal driver error into the appropriate ageerr.Kind.
func classify(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch {
		case strings.HasPrefix(string(pqErr.Code), "42"): // syntax_error_or_access_rule_violation
			return ageerr.Wrap(ageerr.CypherSyntaxError, "query syntax error", err)
		case pqErr.Code.Class() == "08":
			return ageerr.Wrap(ageerr.ConnectionError, "connection error", err)
		}
	}
	return ageerr.Wrap(ageerr.QueryError, "query failed", err)
}
