package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "admin payload with junk header", token: "abc.eyJyb2xlIjoiYWRtaW4ifQ.sig", expected: "admin"},
		{name: "user payload", token: "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"role":"user"}`)) + ".y", expected: "user"},
		{name: "padded payload", token: "x." + base64.URLEncoding.EncodeToString([]byte(`{"role":"admin","x":1}`)) + ".y", expected: "admin"},
		{name: "no role claim", token: "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1"}`)) + ".y", expected: ""},
		{name: "non-string role", token: "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"role":7}`)) + ".y", expected: ""},
		{name: "payload not json", token: "x." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".y", expected: ""},
		{name: "payload not base64", token: "x.!!!.y", expected: ""},
		{name: "single segment", token: "not-a-token", expected: ""},
		{name: "missing signature segment", token: "abc.eyJyb2xlIjoiYWRtaW4ifQ", expected: ""},
		{name: "extra segment", token: "abc.eyJyb2xlIjoiYWRtaW4ifQ.sig.more", expected: ""},
		{name: "empty", token: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRole(tt.token))
		})
	}
}

func TestParseRole_SignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "01J0000000000000000000000",
		"username": "alice",
		"role":     "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.Equal(t, "admin", ParseRole(signed))
}

func TestSession_IsAdmin(t *testing.T) {
	assert.True(t, Session{Role: "admin"}.IsAdmin())
	assert.False(t, Session{Role: "user"}.IsAdmin())
	assert.False(t, Session{Role: "Admin"}.IsAdmin())
	assert.False(t, Session{}.IsAdmin())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "verifying", Verifying.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unknown", State(42).String())
}
