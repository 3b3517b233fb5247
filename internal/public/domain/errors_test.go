package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_JoinsMessagesInOrder(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "name", Message: "Name is required"},
		{Field: "comment", Message: "Comment must be at least 5 characters"},
	})

	assert.Equal(t, "Name is required, Comment must be at least 5 characters", err.Error())
	assert.Equal(t, []string{"name", "comment"}, err.Fields())
	assert.True(t, err.Has("comment"))
	assert.False(t, err.Has("rating"))
}

func TestValidationError_CopiesFields(t *testing.T) {
	fields := []FieldError{{Field: "name", Message: "Name is required"}}
	err := NewValidationError(fields)

	fields[0].Message = "changed"

	assert.Equal(t, "Name is required", err.Errors[0].Message)
	assert.Equal(t, "Name is required", err.Error())
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewStorageError("insert", cause))

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "review store: insert: connection refused", err.Error())
}

func TestNotifyError_Message(t *testing.T) {
	cause := errors.New("timeout")

	assert.Equal(t, "notify smtp: timeout", (&NotifyError{Channel: "smtp", Err: cause}).Error())
	assert.Equal(t, "notify: timeout", (&NotifyError{Err: cause}).Error())
	assert.ErrorIs(t, &NotifyError{Channel: "smtp", Err: cause}, cause)
}
