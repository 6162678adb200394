package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunValidationCommand_EmptyIsSuccess(t *testing.T) {
	ok, msg := runValidationCommand(context.Background(), t.TempDir(), "")
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestRunValidationCommand_SuccessfulCommand(t *testing.T) {
	ok, msg := runValidationCommand(context.Background(), t.TempDir(), "true")
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestRunValidationCommand_FailingCommand(t *testing.T) {
	ok, msg := runValidationCommand(context.Background(), t.TempDir(), "false")
	assert.False(t, ok)
	assert.Contains(t, msg, "validation command")
}
