package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/helpers/apperr"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	id := Identity{UserID: uuid.New(), Role: constants.RoleTeacher, Name: "Dr. Minh"}

	raw, exp, err := IssueAccessToken("s3cret", id, 5*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Hour).Unix(), exp.Unix())

	got, gotExp, err := ParseAccessToken("s3cret", raw, now.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, exp.Unix(), gotExp.Unix())

	_, _, err = ParseAccessToken("s3cret", raw, now.Add(6*time.Hour), 30*time.Second)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, _, err = ParseAccessToken("other", raw, now, 0)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssueAccessTokenRequiresSecret(t *testing.T) {
	_, _, err := IssueAccessToken(" ", Identity{UserID: uuid.New(), Role: constants.RoleAdmin}, time.Hour, time.Now())
	assert.Error(t, err)
}

func TestHashTokenStable(t *testing.T) {
	assert.Equal(t, HashToken("abc", "k"), HashToken("abc", "k"))
	assert.NotEqual(t, HashToken("abc", "k"), HashToken("abc", "k2"))
	assert.Len(t, HashToken("abc", "k"), 64)
}

func TestExtractBearerAndIdentityLocals(t *testing.T) {
	app := fiber.New()
	want := Identity{UserID: uuid.New(), Role: constants.RoleStudent, Name: "An"}
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, "tok123", ExtractBearerToken(c))
		_, err := IdentityFromCtx(c)
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

		SetIdentity(c, want)
		got, err := IdentityFromCtx(c)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, got.Can(constants.CapSubmitReport))
		return c.SendStatus(204)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
