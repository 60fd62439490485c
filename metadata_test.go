package imagevault_test

import (
	"testing"
	"time"

	"github.com/sagarc03/imagevault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_RoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	modified := time.Date(2024, 3, 2, 11, 45, 0, 0, time.UTC)

	m := imagevault.Metadata{
		Owner:      "alice",
		CreatedAt:  created,
		ModifiedAt: modified,
	}

	data, err := imagevault.EncodeMetadata(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"owner":"alice"`)

	decoded, err := imagevault.DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", decoded.Owner)
	assert.True(t, created.Equal(decoded.CreatedAt))
	assert.True(t, modified.Equal(decoded.ModifiedAt))
}

func TestDecodeMetadata_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "truncated json", data: []byte(`{"owner":"alice"`)},
		{name: "not json", data: []byte("owner=alice")},
		{name: "wrong type", data: []byte(`{"owner":42}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := imagevault.DecodeMetadata(tt.data)
			assert.Error(t, err)
			assert.ErrorIs(t, err, imagevault.ErrDecode)
		})
	}
}

func TestDecodeMetadata_MissingOwner(t *testing.T) {
	_, err := imagevault.DecodeMetadata([]byte(`{"created_at":"2024-03-01T10:30:00Z","modified_at":"2024-03-01T10:30:00Z"}`))
	assert.Error(t, err)
	assert.ErrorIs(t, err, imagevault.ErrDecode)
}
