package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEndpoint(t *testing.T) {
	assert.NoError(t, ValidateEndpoint("ws://host/path"))
	assert.NoError(t, ValidateEndpoint("wss://host/path"))

	assert.ErrorIs(t, ValidateEndpoint("http://host"), ErrInvalidEndpoint)
	assert.ErrorIs(t, ValidateEndpoint("https://host"), ErrInvalidEndpoint)
	assert.ErrorIs(t, ValidateEndpoint("not a url ::"), ErrInvalidEndpoint)
	assert.ErrorIs(t, ValidateEndpoint(""), ErrInvalidEndpoint)
}
