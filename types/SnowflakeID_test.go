package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeID_JSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber SnowflakeID
	require.NoError(t, json.Unmarshal([]byte(`"1790000000000000001"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`1790000000000000001`), &fromNumber))
	assert.Equal(t, fromString, fromNumber)

	out, err := json.Marshal(fromString)
	require.NoError(t, err)
	assert.Equal(t, `"1790000000000000001"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &fromString))
}

func TestSnowflakeID_Scan(t *testing.T) {
	var id SnowflakeID
	require.NoError(t, id.Scan(int64(7)))
	assert.Equal(t, SnowflakeID(7), id)
	require.NoError(t, id.Scan([]byte("8")))
	assert.Equal(t, "8", id.String())
	assert.Error(t, id.Scan(3.5))
}
