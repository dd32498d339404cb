package actor

import (
	"iter"
)

// Receiver actor 的邮箱读端
type Receiver[T any] struct {
	mailbox <-chan T
}

func newReceiver[T any](mailbox <-chan T) *Receiver[T] {
	return &Receiver[T]{mailbox: mailbox}
}

// Recv 阻塞读取一条消息，邮箱关闭后返回 false
func (r *Receiver[T]) Recv() (T, bool) {
	v, ok := <-r.mailbox
	return v, ok
}

// TryRecv 非阻塞读取
// ok 表示读到了消息；open 为 false 表示邮箱已关闭且为空
func (r *Receiver[T]) TryRecv() (value T, ok bool, open bool) {
	select {
	case v, more := <-r.mailbox:
		if !more {
			return value, false, false
		}
		return v, true, true
	default:
		return value, false, true
	}
}

// Chan 暴露底层 channel，便于和其他 channel 一起 select
func (r *Receiver[T]) Chan() <-chan T {
	return r.mailbox
}

// All 按到达顺序遍历消息，直到邮箱关闭
// 正常运行中 system 不会关闭邮箱，actor 通常自己决定何时退出循环
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range r.mailbox {
			if !yield(v) {
				return
			}
		}
	}
}
