package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("already scored")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrap: %w", Forbidden("nope"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to save report", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "internal", err.Kind.String())
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("validation failed", map[string][]string{"score": {"max"}})
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, []string{"max"}, err.Fields["score"])
}
