package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"thesis_backend/internals/constants"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
)

// IssueAccessToken membuat JWT HS256 berisi id, role, name, exp.
func IssueAccessToken(secret string, id Identity, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":   id.UserID.String(),
		"role": id.Role.String(),
		"name": id.Name,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccessToken memverifikasi tanda tangan lalu cek exp dengan leeway.
func ParseAccessToken(secret, raw string, now time.Time, leeway time.Duration) (Identity, time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	expF, ok := claims["exp"].(float64)
	if !ok {
		return Identity{}, time.Time{}, fmt.Errorf("%w: missing exp", ErrTokenMalformed)
	}
	exp := time.Unix(int64(expF), 0)
	if now.After(exp.Add(leeway)) {
		return Identity{}, exp, ErrTokenExpired
	}

	idStr, _ := claims["id"].(string)
	userID, err := uuid.Parse(strings.TrimSpace(idStr))
	if err != nil || userID == uuid.Nil {
		return Identity{}, exp, fmt.Errorf("%w: invalid id", ErrTokenMalformed)
	}
	roleStr, _ := claims["role"].(string)
	role, ok := constants.ParseRole(roleStr)
	if !ok {
		return Identity{}, exp, fmt.Errorf("%w: invalid role", ErrTokenMalformed)
	}
	name, _ := claims["name"].(string)

	return Identity{UserID: userID, Role: role, Name: name}, exp, nil
}
