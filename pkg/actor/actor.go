package actor

type (
	// Actor 用户逻辑，在独立协程中运行到结束
	Actor[T any] interface {
		Run(sender *Sender[T], receiver *Receiver[T])
	}

	// ActorFunc 函数形式的 Actor
	ActorFunc[T any] func(sender *Sender[T], receiver *Receiver[T])
)

func (f ActorFunc[T]) Run(sender *Sender[T], receiver *Receiver[T]) {
	f(sender, receiver)
}
