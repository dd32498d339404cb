package main

import (
	"time"

	"github.com/dzm2020/crimson/pkg/actor"
	"github.com/dzm2020/crimson/pkg/glog"
	"github.com/dzm2020/crimson/pkg/utils/timex/asynctime"

	"go.uber.org/zap"
)

const (
	pulseTicks    = 3
	pulseInterval = 100 * time.Millisecond
)

// counter 依次发送 1..n 到 to
func counter(to string, n int) actor.ActorFunc[int] {
	return func(sender *actor.Sender[int], _ *actor.Receiver[int]) {
		for i := 1; i <= n; i++ {
			if err := sender.Send(to, i); err != nil {
				glog.Error("counter send", zap.String("from", sender.Address()), zap.Error(err))
				return
			}
		}
	}
}

// printer 打印收到的 n 条消息后退出
func printer(n int) actor.ActorFunc[int] {
	return func(sender *actor.Sender[int], receiver *actor.Receiver[int]) {
		received := 0
		for v := range receiver.All() {
			glog.Info("received", zap.String("address", sender.Address()), zap.Int("value", v))
			if received++; received == n {
				return
			}
		}
	}
}

// pulse 按固定间隔广播 ticks 次
func pulse(to string, ticks int, interval time.Duration) actor.ActorFunc[int] {
	return func(sender *actor.Sender[int], _ *actor.Receiver[int]) {
		for i := 1; i <= ticks; i++ {
			<-asynctime.After(interval)
			if err := sender.Publish(to, i); err != nil {
				return
			}
		}
	}
}

// mountDemo 挂载演示用的 actor 图
//
//	A -> B          三条顺序消息
//	D -> C x2       轮询
//	pulse -> H x3   广播
//	E -> F          不存在的地址
func mountDemo(system *actor.System[int]) error {
	mounts := []struct {
		address string
		actor   actor.Actor[int]
	}{
		{"A", counter("B", 3)},
		{"B", printer(3)},
		{"C", printer(2)},
		{"C", printer(2)},
		{"D", counter("C", 4)},
		{"H", printer(pulseTicks)},
		{"H", printer(pulseTicks)},
		{"H", printer(pulseTicks)},
		{"pulse", pulse("H", pulseTicks, pulseInterval)},
		{"E", counter("F", 1)},
	}
	for _, m := range mounts {
		if err := system.Mount(m.address, m.actor); err != nil {
			return err
		}
	}
	return nil
}
