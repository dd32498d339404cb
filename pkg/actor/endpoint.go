package actor

// endpoint system 持有的某个 actor 的邮箱写端
type endpoint[T any] struct {
	address string
	mailbox chan T
	// done 在 actor 逻辑返回后关闭
	done chan struct{}
}

func newEndpoint[T any](address string) *endpoint[T] {
	return &endpoint[T]{
		address: address,
		mailbox: make(chan T, 1),
		done:    make(chan struct{}),
	}
}

// deliver 投递到邮箱，在 actor 读走上一条之前阻塞
// actor 已结束时返回 ErrDeliveryFailed，不会永久阻塞路由
func (e *endpoint[T]) deliver(value T) error {
	select {
	case <-e.done:
		return ErrDeliveryFailed
	default:
	}
	select {
	case e.mailbox <- value:
		return nil
	case <-e.done:
		return ErrDeliveryFailed
	}
}

func (e *endpoint[T]) close() {
	close(e.mailbox)
}
