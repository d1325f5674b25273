package store

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("read", nil))

	err := Wrap("read", os.ErrNotExist)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "store read: file does not exist", err.Error())

	again := Wrap("decode", err)
	assert.Same(t, err, again, "an IOError is not wrapped twice")

	wrapped := fmt.Errorf("loading dataset: %w", err)
	assert.True(t, IsIOError(wrapped))
	assert.False(t, IsIOError(errors.New("plain")))
}
