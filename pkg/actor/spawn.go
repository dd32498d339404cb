package actor

import (
	"fmt"

	"github.com/dzm2020/crimson/pkg/glog"
	"github.com/dzm2020/crimson/pkg/lib/grs"

	"go.uber.org/zap"
)

// spawnActor 在池中启动 actor，返回它的 endpoint 和控制通道
// 协程依次发送 Started、运行 actor 逻辑、发送 Stopped，然后关闭控制通道
func spawnActor[T any](pool *grs.Pool, address string, actor Actor[T]) (*endpoint[T], <-chan Envelope[T], error) {
	ep := newEndpoint[T](address)
	control := make(chan Envelope[T], 1)
	err := pool.Go(func() {
		defer close(control)
		control <- Envelope[T]{Kind: EnvelopeStarted, From: address}
		err := runActor(address, actor, newSender[T](address, control), newReceiver[T](ep.mailbox))
		close(ep.done)
		control <- Envelope[T]{Kind: EnvelopeStopped, From: address, Err: err}
	})
	if err != nil {
		return nil, nil, err
	}
	return ep, control, nil
}

// runActor 执行 actor 逻辑，panic 转为 ErrActorPanic
func runActor[T any](address string, actor Actor[T], sender *Sender[T], receiver *Receiver[T]) (err error) {
	grs.Try(func() {
		actor.Run(sender, receiver)
	}, func(r interface{}) {
		err = fmt.Errorf("%w: %v", ErrActorPanic, r)
		glog.Error("actor: run panic", zap.String("address", address), zap.Any("panic", r), zap.Stack("stack"))
	})
	return err
}
