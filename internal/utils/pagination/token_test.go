package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedSeq, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, createdAt, decodedCreatedAt)
	assert.Equal(t, int64(42), decodedSeq)

	// Zero values survive the round trip
	zeroCreatedAt, zeroSeq, err := DecodeToken(EncodeToken(time.Time{}, 0))
	require.NoError(t, err)
	assert.True(t, zeroCreatedAt.IsZero())
	assert.Zero(t, zeroSeq)
}

func TestDecodeTokenError(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		token   string
		errPart string
	}{
		{"invalid base64", "this is not base64!", "base64 decode"},
		{"missing separator", encode("2026-05-15T00:00:00Z"), "split"},
		{"invalid time", encode("notadate|12"), "created_at parse"},
		{"invalid sequence", encode("2026-05-15T00:00:00Z|twelve"), "seq parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
