package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cause := errors.New("boom")

	t.Run("wrapped coded error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", Wrap(cause, CodeConflict, "busy"))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.True(t, HasCode(err, CodeConflict))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(cause))
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("message includes cause", func(t *testing.T) {
		assert.Equal(t, "busy: boom", Wrap(cause, CodeConflict, "busy").Error())
		assert.Equal(t, "missing", New(CodeNotFound, "missing").Error())
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:  http.StatusBadRequest,
		CodeNotFound:    http.StatusNotFound,
		CodeConflict:    http.StatusConflict,
		CodeLedger:      http.StatusBadGateway,
		CodeUnavailable: http.StatusServiceUnavailable,
		CodeInternal:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
