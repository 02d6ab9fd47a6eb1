package helper

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesis_backend/internals/helpers/apperr"
)

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestFromErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Unauthenticated("login"), 401, "UNAUTHORIZED"},
		{apperr.Forbidden("not lead"), 403, "FORBIDDEN"},
		{apperr.NotFound("topic"), 404, "NOT_FOUND"},
		{apperr.Conflict("already scored"), 409, "CONFLICT"},
		{apperr.Validation("too many members"), 422, "VALIDATION_ERROR"},
		{apperr.Internal("save failed", errors.New("pq: secret detail")), 500, "INTERNAL_ERROR"},
		{errors.New("raw"), 500, "INTERNAL_ERROR"},
		{fiber.NewError(fiber.StatusBadRequest, "bad body"), 400, "BAD_REQUEST"},
	}

	for _, tc := range cases {
		app := fiber.New()
		e := tc.err
		app.Get("/", func(c *fiber.Ctx) error { return FromError(c, e) })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.code, body["error_code"])
		if tc.status == 500 {
			assert.NotContains(t, body["message"], "secret")
		}
	}
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type in struct {
		Score *int `json:"score" validate:"required,min=0,max=100"`
	}
	v := 120
	err := ValidateStruct(in{Score: &v})
	require.Error(t, err)

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []string{"max=100"}, ae.Fields["score"])

	zero := 0
	assert.NoError(t, ValidateStruct(in{Score: &zero}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: councils.council_topic_id")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}

func TestMapStoreError(t *testing.T) {
	assert.True(t, apperr.Is(MapStoreError(gorm.ErrRecordNotFound, "nf", "c", "i"), apperr.KindNotFound))
	assert.True(t, apperr.Is(MapStoreError(gorm.ErrDuplicatedKey, "nf", "c", "i"), apperr.KindConflict))
	assert.True(t, apperr.Is(MapStoreError(errors.New("x"), "nf", "c", "i"), apperr.KindInternal))
	assert.NoError(t, MapStoreError(nil, "nf", "c", "i"))
}

func TestResolvePagingAndBuild(t *testing.T) {
	app := fiber.New()
	var got Paging
	app.Get("/", func(c *fiber.Ctx) error {
		got = ResolvePaging(c, 20, 50)
		return c.SendStatus(204)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/?page=3&per_page=500", nil))
	require.NoError(t, err)
	assert.Equal(t, Paging{Page: 3, PerPage: 50, Offset: 100, Limit: 50}, got)

	p := BuildPagination(101, got, 1)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}
