package usecase

import (
	"encoding/base64"
	"testing"

	"viral-clips/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	cursor := MintCursor("abc123", "CAUQAA")
	require.NotEmpty(t, cursor)

	fp, token, err := ResolveCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "abc123", fp)
	assert.Equal(t, "CAUQAA", token)
}

func TestMintCursor_EmptyTokenStaysEmpty(t *testing.T) {
	assert.Empty(t, MintCursor("abc123", ""))
}

func TestResolveCursor_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("plain text"))},
		{"missing fingerprint", base64.RawURLEncoding.EncodeToString([]byte(`{"tok":"CAUQAA"}`))},
		{"missing token", base64.RawURLEncoding.EncodeToString([]byte(`{"fp":"abc123"}`))},
		{"raw upstream token", "CAUQAA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolveCursor(tc.cursor)
			assert.ErrorIs(t, err, model.ErrInvalidCursor)
		})
	}
}
