package actor

// Sender actor 持有的发送句柄，绑定自己的地址
// 所有消息都经过 system 路由，actor 之间不直接持有对方的邮箱
type Sender[T any] struct {
	address string
	control chan<- Envelope[T]
}

func newSender[T any](address string, control chan<- Envelope[T]) *Sender[T] {
	return &Sender[T]{address: address, control: control}
}

// Address 当前 actor 的地址
func (s *Sender[T]) Address() string {
	return s.address
}

// Send 发送给 to 地址下的一个 actor（多个时轮询）
// 在 system 取走上一条消息之前阻塞
func (s *Sender[T]) Send(to string, value T) error {
	return s.post(Envelope[T]{Kind: EnvelopeSend, From: s.address, To: to, Payload: value})
}

// Publish 发送给 to 地址下的所有 actor
func (s *Sender[T]) Publish(to string, value T) error {
	return s.post(Envelope[T]{Kind: EnvelopePublish, From: s.address, To: to, Payload: value})
}

// post 控制通道在 actor 结束后关闭，之后的发送返回 ErrSenderClosed
func (s *Sender[T]) post(envelope Envelope[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrSenderClosed
		}
	}()
	s.control <- envelope
	return nil
}
