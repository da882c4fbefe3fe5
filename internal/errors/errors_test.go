package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCategory(t *testing.T) {
	err := Wrap(ErrConnection, "connect to db:3306")
	assert.True(t, errors.Is(err, ErrConnection))
	assert.Contains(t, err.Error(), "connect to db:3306")

	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err      error
		category error
	}{
		{InvalidInput("bad request"), ErrInvalidInput},
		{NotFound("no such table"), ErrNotFound},
		{Connection("dial tcp refused"), ErrConnection},
		{Transient("queue full"), ErrTransient},
		{Internal("broken state"), ErrInternal},
	}

	for _, tt := range tests {
		assert.True(t, IsCategory(tt.err, tt.category), "%v", tt.err)
	}
}

func TestIsCategory(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrConnection)
	assert.True(t, IsCategory(wrapped, ErrConnection))
	assert.False(t, IsCategory(wrapped, ErrTransient))
	assert.False(t, IsCategory(nil, ErrConnection))
}
