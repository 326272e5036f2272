package history

import "errors"

var (
	ErrNotFound       = errors.New("记录不存在")
	ErrTargetRequired = errors.New("请选择要流转的用户")
	ErrUnknownTarget  = errors.New("目标用户不存在")
)
