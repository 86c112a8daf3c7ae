package exception

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportErrorWrapping(t *testing.T) {
	err := NewImportError("chunker", "batch is a split job", ErrSplitJobUnsupported, false)

	assert.True(t, errors.Is(err, ErrSplitJobUnsupported))
	assert.True(t, IsFatal(err))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, "[chunker] batch is a split job: split jobs are not supported by this importer", err.Error())
}

func TestNewImportErrorfTakesTrailingCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewImportErrorf("registry", "model %s", "Measure", cause)

	assert.Equal(t, "model Measure", err.Message)
	assert.Same(t, cause, err.OriginalErr)
}

func TestIsImportErrorThroughWrap(t *testing.T) {
	inner := NewImportError("orchestration", "claim failed", ErrChunkNotClaimed, true)
	wrapped := fmt.Errorf("scheduling: %w", inner)

	assert.True(t, IsImportError(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, "claim failed", ExtractErrorMessage(wrapped))
}

func TestPlainErrorClassification(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, IsFatal(errors.New("syntax error")))
	assert.False(t, IsFatal(nil))
}
