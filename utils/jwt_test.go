package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateValidateJWT(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)

	// Session validity is signature-only, so no expiry is embedded.
	require.Nil(t, claims.ExpiresAt)
}

func TestValidateJWT_Tampered(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	require.Error(t, err)
}

func TestValidateJWT_WrongKey(t *testing.T) {
	InitJWT("test-secret")
	token, err := GenerateJWT("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	InitJWT("other-secret")
	_, err = ValidateJWT(token)
	require.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	InitJWT("test-secret")
	_, err := ValidateJWT("not-a-token")
	require.Error(t, err)
}

func TestSessionCookieLifecycle(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok123")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookie, cookies[0].Name)
	require.Equal(t, "tok123", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	// Session cookie: no Max-Age.
	require.Equal(t, 0, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)
}
