package failures

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Is_WhenSameKind_ShouldMatchSentinel(t *testing.T) {
	err := New(KindDuplicateApplication, "already applied")

	assert.True(t, errors.Is(err, ErrDuplicateApplication))
	assert.False(t, errors.Is(err, ErrAlreadyFinalized))
}

func Test_KindOf_WhenWrappedTwice_ShouldFindKind(t *testing.T) {
	err := fmt.Errorf("service: %w", New(KindJobNotOpen, "job is pending"))

	assert.Equal(t, KindJobNotOpen, KindOf(err))
	assert.True(t, Is(err, KindJobNotOpen))
}

func Test_KindOf_WhenForeignError_ShouldBeInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func Test_Error_WhenFieldsPresent_ShouldRenderSorted(t *testing.T) {
	err := Validation("invalid profile", map[string]string{"cgpa": "out of range", "name": "required"})

	assert.Equal(t, "VALIDATION_ERROR: invalid profile (cgpa: out of range; name: required)", err.Error())
}

func Test_Wrap_ShouldKeepCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(KindDuplicateEmail, "email taken", cause)

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, cause, errors.Cause(errors.Unwrap(err)))
}
