package utils

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the HTTP-only cookie carrying the session token.
const SessionCookie = "access_token"

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

var jwtKey []byte

// InitJWT sets the signing key. Called from main after the environment is
// loaded; falls back to JWT_KEY when given an empty secret.
func InitJWT(secret string) {
	if secret == "" {
		secret = os.Getenv("JWT_KEY")
	}
	jwtKey = []byte(secret)
}

// GenerateJWT signs a session token for userID. Tokens carry no expiry:
// a session lasts until the cookie is cleared or the signature stops
// verifying.
func GenerateJWT(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "nestquest",
			Subject:  userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// SetSessionCookie attaches the token as a session cookie (no Max-Age).
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
