package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "No report could be produced [no_report]", f.New(errors.ErrNoReport).Error())
	assert.Equal(t, "Invalid interval value [invalid_interval]: 0", f.WithData(errors.ErrInvalidInterval, 0).Error())
	assert.Equal(t, "custom [invalid_argument]", f.WithMessage(errors.ErrInvalidArgument, "custom").Error())
	assert.Equal(t, "unmapped_code [unmapped_code]", f.New(errors.ErrorCode("unmapped_code")).Error())

	cause := stderrors.New("disk on fire")
	assert.Equal(t, "Failed to read config file [read_config_failed]: disk on fire", f.Wrap(errors.ErrReadConfig, cause).Error())
}

func TestWithersDoNotMutate(t *testing.T) {
	base := errors.New().New(errors.ErrShutdownFailed)
	withData := base.WithData("5s")
	withMessage := withData.WithMessage("too slow")

	assert.Nil(t, base.GetData())
	assert.Equal(t, "5s", withData.GetData())
	assert.Equal(t, "5s", withMessage.GetData())
	assert.Equal(t, errors.ErrShutdownFailed, withMessage.Code())
	assert.Equal(t, "too slow [shutdown_failed]: 5s", withMessage.Error())
}

func TestCodeLookup(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := fmt.Errorf("context: %w", errors.New().Wrap(errors.ErrRecordLoop, errors.New().Wrap(errors.ErrResourceUnreadable, cause)))

	assert.Equal(t, errors.ErrRecordLoop, errors.CodeOf(wrapped))
	assert.True(t, errors.HasCode(wrapped, errors.ErrRecordLoop))
	assert.True(t, errors.HasCode(wrapped, errors.ErrResourceUnreadable))
	assert.False(t, errors.HasCode(wrapped, errors.ErrInternal))
	assert.True(t, errors.Is(wrapped, cause))

	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(cause))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}
