package auth

import (
	"errors"
	"fmt"
	"time"

	"taskpro/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the cookie carrying the session token for page flows.
// API clients may send the same token as a bearer header instead.
const CookieName = "session_token"

var ErrInvalidToken = errors.New("invalid session token")

// Session is the resolved identity behind a verified credential.
type Session struct {
	UserID string
	Name   string
}

// IssueToken signs a session token for user, valid for ttl.
func IssueToken(secret []byte, user models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken verifies tokenString and returns the session it carries.
// Expired, malformed or foreign-signed tokens all report ErrInvalidToken.
func ParseToken(secret []byte, tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	return &Session{UserID: sub, Name: name}, nil
}
