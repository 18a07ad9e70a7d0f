package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNone(t *testing.T) {
	h, err := Encode("none", nil)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestEncodeBasic(t *testing.T) {
	h, err := Encode(TypeBasic, map[string]string{"username": "alice", "password": "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "Basic YWxpY2U6d29uZGVybGFuZA==", h.Get("Authorization"))
}

func TestEncodeBearer(t *testing.T) {
	h, err := Encode(TypeBearer, map[string]string{"token": "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", h.Get("Authorization"))
}

func TestEncodeCustomHeaders(t *testing.T) {
	h, err := Encode(TypeCustomHeaders, map[string]string{"X-Api-Key": "key1"})
	require.NoError(t, err)
	assert.Equal(t, "key1", h.Get("X-Api-Key"))
}

func TestEncodeUnknownType(t *testing.T) {
	_, err := Encode("nonsense", nil)
	assert.Error(t, err)
}

func TestEncodeIsIdempotent(t *testing.T) {
	av := map[string]string{"token": "t"}
	h1, _ := Encode(TypeBearer, av)
	h2, _ := Encode(TypeBearer, av)
	assert.Equal(t, h1, h2)
}
