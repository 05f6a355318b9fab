package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDynamic(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want interface{}
	}{
		{"null", "null", nil},
		{"true", "true", true},
		{"false", "false", false},
		{"string", `"hello"`, "hello"},
		{"integer", "30", float64(30)},
		{"float", "3.14", 3.14},
		{"negative", "-5", float64(-5)},
		{"raw fallback", "unquoted", "unquoted"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := decodeDynamic([]byte(c.raw))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestDecodeDynamic_Date(t *testing.T) {
	got, err := decodeDynamic([]byte(`"2015-01-01T00:00:00Z"`))
	require.NoError(t, err)
	tm, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2015, tm.Year())
}

func TestDecodeDynamic_ObjectAndArray(t *testing.T) {
	got, err := decodeDynamic([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, got)

	got, err = decodeDynamic([]byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(1), float64(2), float64(3)}, got)
}
