package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeChanges_PayloadPequenoQuedaPlano(t *testing.T) {
	before := json.RawMessage(`{"pmed":"10"}`)
	after := json.RawMessage(`{"pmed":"12"}`)

	b, a, compressed, algo, err := encodeChanges(before, after)
	require.NoError(t, err)
	assert.Equal(t, compressionNone, algo)
	assert.Nil(t, compressed)
	assert.JSONEq(t, string(before), string(b))
	assert.JSONEq(t, string(after), string(a))
}

func TestEncodeChanges_PayloadGrandeSeComprimeConZstd(t *testing.T) {
	notes := strings.Repeat("requisição do setor de manutenção ", 600)
	after, err := json.Marshal(map[string]string{"notes": notes})
	require.NoError(t, err)
	require.Greater(t, len(after), compressionThreshold)

	b, a, compressed, algo, err := encodeChanges(nil, after)
	require.NoError(t, err)
	assert.Equal(t, compressionZstd, algo)
	assert.Nil(t, b)
	assert.Nil(t, a)
	assert.Less(t, len(compressed), len(after))

	gotBefore, gotAfter, err := decodeChanges(compressed)
	require.NoError(t, err)
	assert.Empty(t, gotBefore)
	assert.JSONEq(t, string(after), string(gotAfter))
}

func TestNullJSON(t *testing.T) {
	assert.Nil(t, nullJSON(nil))
	assert.Equal(t, `{"a":1}`, nullJSON(json.RawMessage(`{"a":1}`)))
}
