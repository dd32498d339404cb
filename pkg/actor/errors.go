package actor

import (
	"errors"
)

// 路由相关错误，Error 字符串即 SystemEvent.Reason
var (
	// ErrAddressNotFound 目标地址没有挂载任何 actor
	ErrAddressNotFound = errors.New("does not exist")
	// ErrDeliveryFailed 目标 actor 已结束，投递失败
	ErrDeliveryFailed = errors.New("send error")
	// ErrCloneFailed Publish 复制消息失败
	ErrCloneFailed = errors.New("clone error")
	// ErrActorPanic actor 逻辑 panic
	ErrActorPanic = errors.New("panic")
)

// 系统相关错误
var (
	ErrActorIsNil    = errors.New("actor: actor is nil")
	ErrSystemStarted = errors.New("actor: system already started")
	ErrSenderClosed  = errors.New("actor: sender closed")
)
