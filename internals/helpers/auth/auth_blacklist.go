package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HashToken: blacklist hanya menyimpan HMAC(token), bukan token mentah.
func HashToken(rawAccessToken, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(rawAccessToken))
	return hex.EncodeToString(m.Sum(nil))
}

// ExtractBearerToken ambil token dari Authorization: Bearer ... atau cookie access_token.
func ExtractBearerToken(c *fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}
