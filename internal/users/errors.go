package users

import "errors"

var (
	ErrNotFound            = errors.New("用户不存在")
	ErrCredentialsRequired = errors.New("用户名和密码不能为空")
	ErrUsernameTaken       = errors.New("用户名已存在")
	ErrAdminUndeletable    = errors.New("不能删除管理员账号")
)

// AuthError is returned when a login does not match any account.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func errBadCredentials() error {
	return &AuthError{Message: "用户名或密码错误"}
}
