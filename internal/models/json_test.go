package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Scan(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		var j JSON
		require.NoError(t, j.Scan([]byte(`{"event":"charge.success","amount":5000}`)))
		assert.Equal(t, "charge.success", j["event"])
	})

	t.Run("string", func(t *testing.T) {
		var j JSON
		require.NoError(t, j.Scan(`{"status":"failed"}`))
		assert.Equal(t, "failed", j["status"])
	})

	t.Run("nil clears the map", func(t *testing.T) {
		j := JSON{"stale": true}
		require.NoError(t, j.Scan(nil))
		assert.Nil(t, j)
	})

	t.Run("unsupported source", func(t *testing.T) {
		var j JSON
		assert.Error(t, j.Scan(42))
	})
}

func TestJSON_Value(t *testing.T) {
	t.Run("nil map writes NULL", func(t *testing.T) {
		var j JSON
		v, err := j.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("round trip", func(t *testing.T) {
		j := JSON{"reference": "DEP-KBP-1"}
		v, err := j.Value()
		require.NoError(t, err)

		var back JSON
		require.NoError(t, back.Scan(v))
		assert.Equal(t, "DEP-KBP-1", back["reference"])
	})
}
