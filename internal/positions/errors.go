package positions

import "errors"

var (
	ErrNotFound     = errors.New("岗位不存在")
	ErrNameRequired = errors.New("岗位名称不能为空")
)
