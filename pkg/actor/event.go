package actor

import (
	"fmt"

	"github.com/dzm2020/crimson/pkg/glog"

	"go.uber.org/zap"
)

// EventKind 系统事件类型
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventForward
	EventError
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "Started"
	case EventForward:
		return "Forward"
	case EventError:
		return "Error"
	case EventStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// SystemEvent system 对外发布的路由/生命周期事件
//
//	Started(Address)
//	Forward(From, To, Index)
//	Error(Address, Reason)
//	Stopped(Address)
type SystemEvent struct {
	Kind    EventKind
	Address string
	From    string
	To      string
	Index   int
	Reason  string
	Err     error
}

// Observer 在路由协程上同步调用，阻塞会拖住整个路由
type Observer func(event SystemEvent)

func startedEvent(address string) SystemEvent {
	return SystemEvent{Kind: EventStarted, Address: address}
}

func stoppedEvent(address string) SystemEvent {
	return SystemEvent{Kind: EventStopped, Address: address}
}

func forwardEvent(from, to string, index int) SystemEvent {
	return SystemEvent{Kind: EventForward, From: from, To: to, Index: index}
}

func errorEvent(address string, err error) SystemEvent {
	return SystemEvent{Kind: EventError, Address: address, Reason: err.Error(), Err: err}
}

func (e SystemEvent) String() string {
	switch e.Kind {
	case EventForward:
		return fmt.Sprintf("Forward(%s, %s, %d)", e.From, e.To, e.Index)
	case EventError:
		return fmt.Sprintf("Error(%s, %s)", e.Address, e.Reason)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Address)
	}
}

// LogObserver 把事件写入 glog，错误事件使用 warn 级别
func LogObserver(event SystemEvent) {
	switch event.Kind {
	case EventForward:
		glog.Debug("actor: forward", zap.String("from", event.From), zap.String("to", event.To), zap.Int("index", event.Index))
	case EventError:
		glog.Warn("actor: route error", zap.String("address", event.Address), zap.String("reason", event.Reason))
	default:
		glog.Info("actor: lifecycle", zap.Stringer("kind", event.Kind), zap.String("address", event.Address))
	}
}
