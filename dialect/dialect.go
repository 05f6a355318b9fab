// Package dialect holds the pure relational-SQL formatting helpers shared by
// the session bootstrap, parameter bridge and query template generator. None
// of these functions touch a connection; they only turn Go values and schema
// types into the text those packages send to Postgres.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
)

// QuoteIdent doubles any embedded double quote and wraps s in double quotes,
// the standard SQL identifier-quoting rule.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EscapeString doubles single quotes, the standard SQL string-literal escape.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// FormatValue renders v as a SQL literal suitable for interpolation into a
// statement body. Complex values (maps, slices) are not handled here; callers
// must route those through the parameter bridge instead (spec.md §4.7).
func FormatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + EscapeString(val) + "'"
	case time.Time:
		return "'" + val.UTC().Format(time.RFC3339) + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return "'" + EscapeString(fmt.Sprintf("%v", val)) + "'"
	}
}

// PostgresType maps a schema property type to the Postgres column type used
// when generating DDL (SPEC_FULL.md §9.1).
func PostgresType(t schema.PropertyType) string {
	switch t {
	case schema.TypeString:
		return "TEXT"
	case schema.TypeNumber, schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeDatetime:
		return "TIMESTAMP WITH TIME ZONE"
	case schema.TypeObject, schema.TypeArray:
		return "JSON"
	case schema.TypeAny:
		return "TEXT"
	default:
		return "TEXT"
	}
}
