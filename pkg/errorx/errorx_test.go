package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, CodeDBError, "查询聊天室 %s", "R1")

	assert.Equal(t, "查询聊天室 R1: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDBError, GetCode(err))
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
	assert.Equal(t, CodeServerBusy, GetCode(nil))
}

func TestCodeHelpersSeeThroughWrapping(t *testing.T) {
	inner := New(CodeForbidden, "已离开聊天室")
	wrapped := fmt.Errorf("send: %w", inner)

	assert.True(t, IsForbidden(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(Wrap(errors.New("record not found"), CodeNotFound, "消息不存在")))
	assert.True(t, IsConflict(New(CodeConflict, "dup")))
}

func TestPredefinedErrorsMatchByCode(t *testing.T) {
	err := New(CodeForbidden, "不是该聊天室成员")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrInvalidParam)
}
